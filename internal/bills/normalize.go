package bills

import (
	"fmt"
	"sort"
	"strings"

	"billed/internal/core"
)

// Diagnostic records a bill field that could not be normalized and was kept
// as stored.
type Diagnostic struct {
	BillID string
	Field  string
	Raw    string
	Err    error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("bill %s: %s %q kept raw: %v", d.BillID, d.Field, d.Raw, d.Err)
}

// Normalize returns the bill with a display date and status label. When the
// date cannot be formatted the raw value is kept and a diagnostic is returned.
func Normalize(raw core.Bill) (core.Bill, *Diagnostic) {
	out := raw
	out.Status = core.StatusLabel(raw.Status)

	formatted, err := core.FormatDate(raw.Date)
	if err != nil {
		return out, &Diagnostic{BillID: raw.ID, Field: "date", Raw: raw.Date, Err: err}
	}
	out.Date = formatted
	return out, nil
}

// NormalizeAll normalizes every record, most recent first. The output always
// has the same length as the input. Records are ordered by their stored date
// string without surrounding blanks, compared lexicographically, so ISO dates
// sort chronologically.
func NormalizeAll(raws []core.Bill) ([]core.Bill, []Diagnostic) {
	order := make([]int, len(raws))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return strings.TrimSpace(raws[order[a]].Date) > strings.TrimSpace(raws[order[b]].Date)
	})

	out := make([]core.Bill, 0, len(raws))
	var diags []Diagnostic
	for _, i := range order {
		b, diag := Normalize(raws[i])
		if diag != nil {
			diags = append(diags, *diag)
		}
		out = append(out, b)
	}
	return out, diags
}
