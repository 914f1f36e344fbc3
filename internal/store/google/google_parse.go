package google

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"billed/internal/core"
)

// billColumns is the column layout of the bills sheet, A to L.
var billColumns = []string{
	"id", "email", "type", "name", "amount", "date",
	"vat", "pct", "commentary", "fileUrl", "fileName", "status",
}

// parseBills converts a values matrix (as returned by the Sheets API) into
// bills. A header row naming the columns is honoured when present, otherwise
// the default layout is assumed. Parsing is best-effort: unreadable numbers
// are left empty so the record still reaches the list.
func parseBills(values [][]interface{}) []core.Bill {
	if len(values) == 0 {
		return nil
	}
	cols := defaultColumnIndex()
	start := 0
	if headers := toStrings(values[0]); isHeader(headers) {
		cols = columnIndex(headers)
		start = 1
	}

	out := make([]core.Bill, 0, len(values)-start)
	for _, raw := range values[start:] {
		row := toStrings(raw)
		get := func(name string) string { return safeGet(row, cols[name]) }
		if get("id") == "" && get("email") == "" {
			continue
		}
		b := core.Bill{
			ID:         get("id"),
			Email:      get("email"),
			Type:       get("type"),
			Name:       get("name"),
			Date:       get("date"),
			Pct:        core.DefaultPct,
			Commentary: get("commentary"),
			FileURL:    get("fileUrl"),
			FileName:   get("fileName"),
			Status:     get("status"),
		}
		if d, ok := core.ParseStoredDecimal(get("amount")); ok {
			b.Amount = d
		}
		if d, ok := core.ParseStoredDecimal(get("vat")); ok {
			b.VAT = decimal.NewNullDecimal(d)
		}
		if p, err := strconv.Atoi(get("pct")); err == nil {
			b.Pct = p
		}
		out = append(out, b)
	}
	return out
}

// billRow renders a bill in the column layout of the sheet.
func billRow(b core.Bill) []interface{} {
	vat := ""
	if b.VAT.Valid {
		vat = b.VAT.Decimal.String()
	}
	return []interface{}{
		b.ID, b.Email, b.Type, b.Name, b.Amount.String(), b.Date,
		vat, strconv.Itoa(b.Pct), b.Commentary, b.FileURL, b.FileName, b.Status,
	}
}

func isHeader(row []string) bool {
	return indexOf(row, "id") != -1 && indexOf(row, "email") != -1
}

func defaultColumnIndex() map[string]int {
	idx := make(map[string]int, len(billColumns))
	for i, name := range billColumns {
		idx[name] = i
	}
	return idx
}

func columnIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(billColumns))
	for _, name := range billColumns {
		idx[name] = indexOf(headers, name)
	}
	return idx
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
