package sheetstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CSVStore implements Store against a single local flat file. Load reads
// the whole file; Save rewrites it entirely via a temp file and rename, so
// a crash mid-save leaves the previous contents in place.
type CSVStore struct {
	path string
}

// NewCSVStore creates a store over the given file path. The file does not
// need to exist yet; a missing file loads as an empty table.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Load(ctx context.Context) (RawTable, error) {
	if err := ctx.Err(); err != nil {
		return RawTable{}, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RawTable{}, nil
		}
		return RawTable{}, fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may be ragged; squared below
	records, err := r.ReadAll()
	if err != nil {
		return RawTable{}, fmt.Errorf("%w: reading %s: %v", ErrStoreRejected, s.path, err)
	}
	if len(records) == 0 {
		return RawTable{}, nil
	}

	header := records[0]
	rows, warnings := squareRows(header, records[1:])
	return RawTable{Header: header, Rows: rows, Warnings: warnings}, nil
}

func (s *CSVStore) Save(ctx context.Context, table RawTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(table.Header); err != nil {
		tmp.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range table.Rows {
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}
	return nil
}

func (s *CSVStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}
	return nil
}

var _ Store = (*CSVStore)(nil)
