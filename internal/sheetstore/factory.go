package sheetstore

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/config"
)

// New constructs the appropriate table store based on config. Called once
// at server startup. pool is only consulted for the postgres backend and
// may be nil otherwise.
func New(cfg config.StoreConfig, pool *pgxpool.Pool) (Store, error) {
	switch cfg.Backend {
	case "csv":
		return NewCSVStore(cfg.CSV.Path), nil
	case "sheets":
		return NewSheetsClient(
			cfg.Sheets.BaseURL,
			cfg.Sheets.SpreadsheetID,
			cfg.Sheets.Range,
			cfg.Sheets.Token,
			cfg.Sheets.Timeout,
		), nil
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("postgres backend requires a connection pool")
		}
		return NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q: must be one of csv, sheets, postgres", cfg.Backend)
	}
}
