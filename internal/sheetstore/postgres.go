package sheetstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a postgres table that mirrors the sheet
// shape: one row per sheet row, cells kept as a text array, row 0 being the
// header. Cells stay untyped here; type coercion belongs to the
// normalizer, not the backend.
//
// Unlike the sheets backend, Save here is transactional, so an interrupted
// save cannot leave the table empty.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context) (RawTable, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT row_num, cells FROM tracking_rows ORDER BY row_num`)
	if err != nil {
		return RawTable{}, fmt.Errorf("%w: load tracking rows: %v", ErrStoreUnreachable, err)
	}
	defer rows.Close()

	var all [][]string
	for rows.Next() {
		var rowNum int64
		var cells []string
		if err := rows.Scan(&rowNum, &cells); err != nil {
			return RawTable{}, fmt.Errorf("scan tracking row: %w", err)
		}
		all = append(all, cells)
	}
	if err := rows.Err(); err != nil {
		return RawTable{}, fmt.Errorf("%w: read tracking rows: %v", ErrStoreUnreachable, err)
	}
	if len(all) == 0 {
		return RawTable{}, nil
	}

	header := all[0]
	squared, warnings := squareRows(header, all[1:])
	return RawTable{Header: header, Rows: squared, Warnings: warnings}, nil
}

func (s *PostgresStore) Save(ctx context.Context, table RawTable) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin save: %v", ErrStoreUnreachable, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tracking_rows`); err != nil {
		return fmt.Errorf("clear tracking rows: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO tracking_rows (row_num, cells) VALUES ($1, $2)`, int64(0), table.Header)
	for i, row := range table.Rows {
		batch.Queue(`INSERT INTO tracking_rows (row_num, cells) VALUES ($1, $2)`, int64(i+1), row)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert tracking rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit save: %v", ErrStoreUnreachable, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var _ Store = (*PostgresStore)(nil)
