// Package tables loads the character tables the romanization systems are
// built from.
package tables

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// ErrTableNotFound is returned when a provider has no table with the
// requested name.
var ErrTableNotFound = errors.New("table not found")

// IsNotFound reports whether err means the table does not exist. Stores
// translate their driver's no-rows errors into ErrTableNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound)
}

// Row is one entry of a table. Rows keep the order they were stored in.
type Row struct {
	Key   string
	Value string
}

// Provider returns the rows of a named table.
type Provider interface {
	Rows(ctx context.Context, name string) ([]Row, error)
}

// LoadCharacterMap reads a table and builds a map from it, applying key and
// value to every row. A later row with the same key replaces an earlier one.
func LoadCharacterMap[V any](ctx context.Context, p Provider, name string, key func(string) string, value func(string) (V, error)) (map[string]V, error) {
	rows, err := p.Rows(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading table %s: %w", name, err)
	}
	m := make(map[string]V, len(rows))
	for i, r := range rows {
		v, err := value(r.Value)
		if err != nil {
			return nil, fmt.Errorf("table %s row %d (%q): %w", name, i+1, r.Key, err)
		}
		m[key(r.Key)] = v
	}
	return m, nil
}

// Identity is the usual key transform.
func Identity(s string) string { return s }

// SplitSpaces is the usual value transform for multi-reading tables.
func SplitSpaces(s string) ([]string, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, errors.New("no readings")
	}
	return fields, nil
}

// FSProvider reads tables stored as two-column CSV files named <name>.csv
// under Dir in FS. Lines starting with '#' are comments.
type FSProvider struct {
	FS  fs.FS
	Dir string
}

func (p FSProvider) Rows(_ context.Context, name string) ([]Row, error) {
	f, err := p.FS.Open(path.Join(p.Dir, name+".csv"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// Names lists the tables available in the provider.
func (p FSProvider) Names() ([]string, error) {
	entries, err := fs.ReadDir(p.FS, p.Dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".csv" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".csv"))
	}
	return names, nil
}

// ReadCSV parses key,value records.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 2
	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parsing csv: %w", err)
		}
		rows = append(rows, Row{Key: rec[0], Value: rec[1]})
	}
}

// MemoryProvider serves tables held in memory.
type MemoryProvider map[string][]Row

func (p MemoryProvider) Rows(_ context.Context, name string) ([]Row, error) {
	rows, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return append([]Row(nil), rows...), nil
}
