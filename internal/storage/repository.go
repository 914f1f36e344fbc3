package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"billed/internal/core"
	"billed/internal/store"

	_ "modernc.org/sqlite"
)

var (
	_ store.Store            = (*SQLiteRepository)(nil)
	_ store.AttachmentReader = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const billColumns = `id, email, type, name, amount, date, vat, pct, commentary, file_url, file_name, status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (core.Bill, error) {
	var b core.Bill
	err := row.Scan(&b.ID, &b.Email, &b.Type, &b.Name, &b.Amount, &b.Date, &b.VAT,
		&b.Pct, &b.Commentary, &b.FileURL, &b.FileName, &b.Status)
	return b, err
}

// List implements store.BillLister
func (r *SQLiteRepository) List(ctx context.Context, email string) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE email = ? COLLATE NOCASE ORDER BY rowid`, email)
	if err != nil {
		return nil, store.ServerError("list bills", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, store.ServerError("scan bill", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, store.ServerError("list bills", err)
	}
	return out, nil
}

// Create implements store.BillCreator
func (r *SQLiteRepository) Create(ctx context.Context, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, fmt.Errorf("validation failed: %w", err)
	}
	b.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Email, b.Type, b.Name, b.Amount, b.Date, b.VAT,
		b.Pct, b.Commentary, b.FileURL, b.FileName, b.Status)
	if err != nil {
		return core.Bill{}, store.ServerError("create bill", err)
	}

	slog.InfoContext(ctx, "Bill saved to SQLite",
		"id", b.ID,
		"email", b.Email,
		"amount", b.Amount.String(),
		"date", b.Date)

	return b, nil
}

// Upload implements store.AttachmentUploader
func (r *SQLiteRepository) Upload(ctx context.Context, a core.Attachment) (core.StoredFile, error) {
	key := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attachments (key, file_name, mime_type, content) VALUES (?, ?, ?, ?)`,
		key, a.Name, a.MimeType, a.Content)
	if err != nil {
		return core.StoredFile{}, store.ServerError("upload attachment", err)
	}
	return core.StoredFile{
		FileURL:  "sqlite://attachments/" + key,
		FileName: a.Name,
		Key:      key,
	}, nil
}

// Attachment implements store.AttachmentReader.
func (r *SQLiteRepository) Attachment(ctx context.Context, key string) (core.Attachment, error) {
	var a core.Attachment
	err := r.db.QueryRowContext(ctx,
		`SELECT file_name, mime_type, content FROM attachments WHERE key = ?`, key).
		Scan(&a.Name, &a.MimeType, &a.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Attachment{}, store.NotFound("get attachment", err)
	}
	if err != nil {
		return core.Attachment{}, store.ServerError("get attachment", err)
	}
	return a, nil
}

// GetBill retrieves a single bill by ID
func (r *SQLiteRepository) GetBill(ctx context.Context, id string) (core.Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, store.NotFound("get bill", err)
	}
	if err != nil {
		return core.Bill{}, store.ServerError("get bill", err)
	}
	return b, nil
}

// PendingSync returns bills not yet mirrored, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE synced_at IS NULL ORDER BY created_at, rowid LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync bills: %w", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending bill: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MarkSynced marks a bill as successfully mirrored
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bills SET synced_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark bill synced: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.NotFound("mark bill synced", nil)
	}

	slog.InfoContext(ctx, "Bill marked as synced", "id", id)
	return nil
}
