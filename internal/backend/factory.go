package backend

import (
	"context"
	"fmt"
	"time"

	"billed/internal/adapters"
	"billed/internal/amqp"
	"billed/internal/cache"
	"billed/internal/log"
	"billed/internal/storage"
	"billed/internal/store/google"
	"billed/internal/store/memory"
)

// Sheets reads are quota limited, so list results are cached briefly.
const (
	sheetsListCacheSize = 100
	sheetsListCacheTTL  = 30 * time.Second
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Default(log.ComponentBackend)
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional: without it bills stay local until the worker sweeps them.
	var publisher adapters.Publisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sync",
				log.FieldError, err)
		} else {
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	adapter := adapters.NewSQLiteAdapter(repo, publisher, f.logger)

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &BackendResult{Store: adapter, Cleanup: adapter.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	creds, err := google.LoadCredentials(config.GoogleServiceAccountJSON, config.GoogleServiceAccountFile)
	if err != nil {
		return nil, err
	}
	cli, err := google.New(ctx, google.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		DriveFolderID:   config.GoogleDriveFolderID,
		CredentialsJSON: creds,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized Google Sheets backend",
		"list_cache_ttl", sheetsListCacheTTL.String())
	return &BackendResult{Store: cache.NewStore(cli, sheetsListCacheSize, sheetsListCacheTTL)}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	st, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", dataDir)
	return &BackendResult{Store: st}, nil
}
