// Package google stores bills in a Google Sheets spreadsheet and their
// attachments in a Google Drive folder.
package google

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"billed/internal/core"
	"billed/internal/log"
	"billed/internal/store"
)

const DefaultSheetName = "Bills"

var _ store.Store = (*Client)(nil)

// Options configures a Client.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	DriveFolderID   string
	CredentialsJSON []byte
}

type Client struct {
	sheets        *gsheet.Service
	drive         *drive.Service
	spreadsheetID string
	sheetName     string
	driveFolderID string
	logger        *log.Logger
}

// New creates a client authenticated with service account credentials.
func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if len(opts.CredentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials")
	}
	if opts.SheetName == "" {
		opts.SheetName = DefaultSheetName
	}
	if logger == nil {
		logger = log.Default(log.ComponentSheets)
	}

	sheetsSvc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(opts.CredentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx,
		goption.WithCredentialsJSON(opts.CredentialsJSON),
		goption.WithScopes(drive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	logger.InfoContext(ctx, "Google services created",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", opts.SheetName,
		"drive_folder", opts.DriveFolderID != "")

	return &Client{
		sheets:        sheetsSvc,
		drive:         driveSvc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
		driveFolderID: opts.DriveFolderID,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

// LoadCredentials returns the inline JSON when set, otherwise the content of
// file, falling back to GOOGLE_APPLICATION_CREDENTIALS.
func LoadCredentials(inline, file string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if strings.TrimSpace(file) == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

func (c *Client) billRange() string {
	return fmt.Sprintf("%s!A:L", quoteSheet(c.sheetName))
}

// List implements store.BillLister. An empty email returns every row.
func (c *Client) List(ctx context.Context, email string) ([]core.Bill, error) {
	resp, err := c.sheets.Spreadsheets.Values.Get(c.spreadsheetID, c.billRange()).Context(ctx).Do()
	if err != nil {
		return nil, mapError("list bills", err)
	}
	all := parseBills(resp.Values)
	if email == "" {
		return all, nil
	}
	out := make([]core.Bill, 0, len(all))
	for _, b := range all {
		if strings.EqualFold(b.Email, email) {
			out = append(out, b)
		}
	}
	c.logger.DebugContext(ctx, "Bills read from sheet",
		log.FieldEmail, email,
		log.FieldCount, len(out))
	return out, nil
}

// Create implements store.BillCreator. The row ID is assigned here.
func (c *Client) Create(ctx context.Context, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, fmt.Errorf("validation failed: %w", err)
	}
	b.ID = uuid.NewString()
	if err := c.appendRow(ctx, b); err != nil {
		return core.Bill{}, mapError("create bill", err)
	}
	return b, nil
}

// Mirror appends a bill created elsewhere, keeping its ID.
func (c *Client) Mirror(ctx context.Context, b core.Bill) error {
	if b.ID == "" {
		return errors.New("mirror bill: empty id")
	}
	if err := c.appendRow(ctx, b); err != nil {
		return mapError("mirror bill", err)
	}
	return nil
}

func (c *Client) appendRow(ctx context.Context, b core.Bill) error {
	vr := &gsheet.ValueRange{Values: [][]interface{}{billRow(b)}}
	_, err := c.sheets.Spreadsheets.Values.Append(c.spreadsheetID, c.billRange(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "Bill row appended",
		log.FieldBillID, b.ID,
		log.FieldEmail, b.Email)
	return nil
}

// Upload implements store.AttachmentUploader by creating a Drive file.
func (c *Client) Upload(ctx context.Context, a core.Attachment) (core.StoredFile, error) {
	f := &drive.File{Name: a.Name, MimeType: a.MimeType}
	if c.driveFolderID != "" {
		f.Parents = []string{c.driveFolderID}
	}
	call := c.drive.Files.Create(f).Fields("id", "name", "webViewLink").Context(ctx)
	if a.MimeType != "" {
		call = call.Media(bytes.NewReader(a.Content), googleapi.ContentType(a.MimeType))
	} else {
		call = call.Media(bytes.NewReader(a.Content))
	}
	created, err := call.Do()
	if err != nil {
		return core.StoredFile{}, mapError("upload attachment", err)
	}
	url := created.WebViewLink
	if url == "" {
		url = "https://drive.google.com/file/d/" + created.Id + "/view"
	}
	c.logger.InfoContext(ctx, "Attachment uploaded to Drive",
		log.FieldFileName, created.Name,
		log.FieldFileKey, created.Id)
	return core.StoredFile{FileURL: url, FileName: created.Name, Key: created.Id}, nil
}

// mapError turns Google API failures into store.StatusError so callers can
// tell a missing spreadsheet from a server failure.
func mapError(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case gerr.Code == http.StatusNotFound:
		return store.NotFound(op, err)
	case gerr.Code >= http.StatusInternalServerError:
		return store.ServerError(op, err)
	default:
		return &store.StatusError{Code: gerr.Code, Op: op, Err: err}
	}
}

func quoteSheet(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}
