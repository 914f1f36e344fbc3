package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billed/internal/adapters"
	"billed/internal/config"
	"billed/internal/core"
	"billed/internal/log"
	"billed/internal/store/memory"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		assert.True(t, bt.IsValid(), bt.String())
	}
	assert.False(t, BackendType("postgres").IsValid())
	assert.Equal(t, []string{"sqlite", "sheets", "memory"}, GetBackendTypeStrings())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Error(t, Config{Type: "bogus"}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.Error(t, Config{Type: SheetsBackend, GoogleSpreadsheetID: "id"}.Validate())
	assert.NoError(t, Config{Type: SheetsBackend, GoogleSpreadsheetID: "id", GoogleServiceAccountJSON: "{}"}.Validate())
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "redis"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         "sheets",
		DataDir:             "fixtures",
		GoogleSpreadsheetID: "sheet",
		GoogleDriveFolderID: "folder",
	})
	require.NoError(t, err)
	assert.Equal(t, SheetsBackend, cfg.Type)
	assert.Equal(t, "fixtures", cfg.DataDirectory)
	assert.Equal(t, "folder", cfg.GoogleDriveFolderID)
}

func TestCreateBackend_Memory(t *testing.T) {
	dir := t.TempDir()
	seed := `[{"id":"1","email":"a@a","date":"2022-01-01","status":"pending","amount":"10","pct":20}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bills.json"), []byte(seed), 0644))

	res, err := NewFactory(log.Discard()).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, res.Store)
	assert.Nil(t, res.Cleanup)

	bills, err := res.Store.List(context.Background(), "a@a")
	require.NoError(t, err)
	assert.Len(t, bills, 1)
}

func TestCreateBackend_SQLiteWithoutAMQP(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(log.Discard()).CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "billed.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Cleanup)
	defer res.Cleanup()
	assert.IsType(t, &adapters.SQLiteAdapter{}, res.Store)

	stored, err := res.Store.Upload(ctx, core.Attachment{Name: "t.png", MimeType: "image/png", Content: []byte{1}})
	require.NoError(t, err)
	created, err := res.Store.Create(ctx, core.Bill{
		Email:    "a@a",
		Date:     "2022-01-01",
		Amount:   decimal.NewFromInt(10),
		Pct:      20,
		FileURL:  stored.FileURL,
		FileName: stored.FileName,
		Status:   string(core.StatusPending),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func TestCreateBackend_SheetsMissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:                     SheetsBackend,
		GoogleSpreadsheetID:      "id",
		GoogleServiceAccountFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	assert.Error(t, err)
}
