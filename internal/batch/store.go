// Package batch persists the aggregated record collection and its
// provenance log, and exports the bilingual dataset.
package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/archivo-venezuela/archivero/internal/record"
)

const (
	// RawFile is the unified batch collection file name.
	RawFile = "raw_metadata.json"
	// LogFile is the provenance log file name.
	LogFile = "source_log.csv"
)

var logHeader = []string{"timestamp", "source", "count"}

// Store persists batches of unified records under one data directory. It is
// meant for single-operator use: files are read then rewritten wholesale
// with no locking.
type Store struct {
	dir string

	// now is swappable for log tests.
	now func() time.Time
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Load reads the persisted collection, keeping each entry as raw JSON so a
// rewrite preserves entries this process did not produce. An absent or
// corrupt file reads as an empty collection, not an error.
func (s *Store) Load() ([]json.RawMessage, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, RawFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read batch collection: %w", err)
	}

	var existing []json.RawMessage
	if err := json.Unmarshal(data, &existing); err != nil {
		slog.Warn("Batch collection is corrupt, treating as empty", "file", RawFile, "err", err)
		return nil, nil
	}
	return existing, nil
}

// LoadItems reads the persisted collection as loosely-typed records for the
// Dublin Core mapper.
func (s *Store) LoadItems() ([]map[string]any, error) {
	raw, err := s.Load()
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		var item map[string]any
		if err := json.Unmarshal(entry, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Append concatenates new records onto the persisted collection, preserving
// arrival order, then logs the batch provenance. No deduplication is
// performed: re-running an adapter over the same source re-appends rows.
func (s *Store) Append(records []record.Unified, source string) error {
	existing, err := s.Load()
	if err != nil {
		return err
	}

	merged, err := appendRaw(existing, records)
	if err != nil {
		return err
	}

	if err := s.writeCollection(merged); err != nil {
		return err
	}

	return s.appendLog(source, len(records))
}

// AppendDeduped is Append with an upsert-by-(source, id) policy: incoming
// records replace persisted entries sharing their source and id instead of
// duplicating them.
func (s *Store) AppendDeduped(records []record.Unified, source string) error {
	existing, err := s.Load()
	if err != nil {
		return err
	}

	incoming := make(map[[2]string]bool, len(records))
	for _, r := range records {
		incoming[[2]string{r.Source, r.ID}] = true
	}

	kept := make([]json.RawMessage, 0, len(existing))
	for _, entry := range existing {
		var key struct {
			Source string `json:"source"`
			ID     string `json:"id"`
		}
		if err := json.Unmarshal(entry, &key); err == nil && incoming[[2]string{key.Source, key.ID}] {
			continue
		}
		kept = append(kept, entry)
	}

	merged, err := appendRaw(kept, records)
	if err != nil {
		return err
	}

	if err := s.writeCollection(merged); err != nil {
		return err
	}

	return s.appendLog(source, len(records))
}

func appendRaw(existing []json.RawMessage, records []record.Unified) ([]json.RawMessage, error) {
	merged := existing
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record %s/%s: %w", r.Source, r.ID, err)
		}
		merged = append(merged, data)
	}
	return merged, nil
}

// writeCollection rewrites the whole collection pretty-printed with 2-space
// indent, UTF-8, no HTML escaping.
func (s *Store) writeCollection(entries []json.RawMessage) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if entries == nil {
		entries = []json.RawMessage{}
	}

	f, err := os.Create(filepath.Join(s.dir, RawFile))
	if err != nil {
		return fmt.Errorf("failed to write batch collection: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("failed to encode batch collection: %w", err)
	}
	return nil
}

// appendLog records one provenance row, writing the header only when the
// log file does not yet exist.
func (s *Store) appendLog(source string, count int) error {
	logPath := filepath.Join(s.dir, LogFile)
	_, statErr := os.Stat(logPath)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open provenance log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(logHeader); err != nil {
			return fmt.Errorf("failed to write log header: %w", err)
		}
	}

	row := []string{
		s.now().UTC().Format(time.RFC3339),
		source,
		fmt.Sprintf("%d", count),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write log row: %w", err)
	}

	w.Flush()
	return w.Error()
}
