// Package backend opens the expense store selected by DATA_BACKEND.
package backend

import (
	"context"
	"fmt"

	"gastos/internal/config"
	"gastos/internal/log"
	ports "gastos/internal/sheets"
	gsheet "gastos/internal/sheets/google"
	"gastos/internal/sheets/memory"
	"gastos/internal/storage"
)

type Type string

const (
	Memory Type = config.BackendMemory
	SQLite Type = config.BackendSQLite
	Sheets Type = config.BackendSheets
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Sheets:
		return true
	default:
		return false
	}
}

// CleanupFunc releases what a backend holds open.
type CleanupFunc func() error

// Result is an opened store and its cleanup.
type Result struct {
	Store   ports.Store
	Cleanup CleanupFunc
}

// Close runs Cleanup when there is one.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Open builds the store named by cfg.DataBackend.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	switch t := Type(cfg.DataBackend); t {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", log.FieldBackend, t, "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil

	case Sheets:
		creds, err := gsheet.LoadCredentials(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("open sheets backend: %w", err)
		}
		cli, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: creds,
		})
		if err != nil {
			return nil, fmt.Errorf("open sheets backend: %w", err)
		}
		logger.Info("Initialized Google Sheets backend", log.FieldBackend, t, "sheet", cfg.GoogleSheetName)
		return &Result{Store: cli}, nil

	case Memory:
		store, err := memory.NewFromFile(cfg.MemorySeedFile)
		if err != nil {
			return nil, fmt.Errorf("open memory backend: %w", err)
		}
		logger.Info("Initialized memory backend", log.FieldBackend, t, "seed_file", cfg.MemorySeedFile)
		return &Result{Store: store}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %q", cfg.DataBackend)
	}
}
