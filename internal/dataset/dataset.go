// Package dataset imports records from JSONL or YAML files into a recordstore.
//
// Files are only ever read. A [Watcher] rebuilds the store when its source
// file changes and swaps it into a [recordstore.Synced].
package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/maruel/ksid"
	"github.com/maruel/recdb/internal/recordstore"
	"gopkg.in/yaml.v3"
)

// maxLineSize bounds a single JSONL line.
const maxLineSize = 1 << 20

var errUserRequired = errors.New("user is required")

// Format is a dataset file encoding.
type Format string

const (
	// FormatJSONL is one JSON object per line.
	FormatJSONL Format = "jsonl"
	// FormatYAML is a YAML document with a top-level "records" list.
	FormatYAML Format = "yaml"
)

// FormatFromPath returns the format implied by the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".json", ".ndjson":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown dataset extension %q", filepath.Ext(path))
	}
}

// Row is a record as written in a dataset file.
type Row struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty" jsonschema:"description=Unique record identifier; a new one is generated when empty"`
	Title     string `json:"title" yaml:"title" jsonschema:"description=Opaque payload"`
	User      string `json:"user" yaml:"user" jsonschema:"description=Author of the record,minLength=1"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp" jsonschema:"description=Creation time in seconds since the Unix epoch"`
	Karma     int64  `json:"karma" yaml:"karma" jsonschema:"description=Score of the record; may be negative"`
}

// Validate checks that the row is well-formed.
func (r *Row) Validate() error {
	if r.User == "" {
		return errUserRequired
	}
	return nil
}

// Record converts the row, assigning a new ID when it has none.
func (r *Row) Record() recordstore.Record {
	id := r.ID
	if id == "" {
		id = ksid.NewID().String()
	}
	return recordstore.Record{
		ID:        id,
		Title:     r.Title,
		User:      r.User,
		Timestamp: r.Timestamp,
		Karma:     r.Karma,
	}
}

type yamlFile struct {
	Records []Row `yaml:"records"`
}

// Decode reads and validates all rows from r.
func Decode(r io.Reader, f Format) ([]Row, error) {
	switch f {
	case FormatJSONL:
		return decodeJSONL(r)
	case FormatYAML:
		var doc yamlFile
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
		for i := range doc.Records {
			if err := doc.Records[i].Validate(); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
		}
		return doc.Records, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

func decodeJSONL(r io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var row Row
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("line %d: failed to unmarshal row: %w", lineNo, err)
		}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

// Stats summarizes an import.
type Stats struct {
	Loaded     int
	Duplicates int
	Generated  int
}

// Load reads the dataset at path and inserts every row into s.
//
// Rows whose ID is already present are skipped and counted as duplicates.
func Load(ctx context.Context, path string, s *recordstore.Store) (Stats, error) {
	var st Stats
	f, err := FormatFromPath(path)
	if err != nil {
		return st, err
	}
	fd, err := os.Open(path) //nolint:gosec // G304: dataset path is provided by the CLI user
	if err != nil {
		return st, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() {
		_ = fd.Close()
	}()
	rows, err := Decode(fd, f)
	if err != nil {
		return st, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	for i := range rows {
		if rows[i].ID == "" {
			st.Generated++
		}
		if err := s.Insert(rows[i].Record()); err != nil {
			if !errors.Is(err, recordstore.ErrDuplicateKey) {
				return st, err
			}
			st.Duplicates++
			slog.WarnContext(ctx, "Skipping duplicate record", "path", path, "err", err)
			continue
		}
		st.Loaded++
	}
	return st, nil
}

// Build returns a new store populated from the dataset at path.
func Build(ctx context.Context, path string) (*recordstore.Store, Stats, error) {
	s := recordstore.New()
	st, err := Load(ctx, path, s)
	if err != nil {
		return nil, st, err
	}
	return s, st, nil
}

// Schema returns the JSON Schema describing a dataset row.
func Schema() ([]byte, error) {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	data, err := json.MarshalIndent(r.Reflect(&Row{}), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
