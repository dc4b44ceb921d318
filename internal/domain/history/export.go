package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"

	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// Format selects the export encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format string, defaulting to JSON
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format: %q", s)
	}
}

// Export writes all retained entries to w in the given format,
// optionally gzip-compressed. Timestamps are RFC 3339.
func (s *Store) Export(w io.Writer, format Format, compress bool) error {
	entries := s.List(0, 0)

	if compress {
		gz := gzip.NewWriter(w)
		if err := writeEntries(gz, format, entries); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()
	}

	return writeEntries(w, format, entries)
}

func writeEntries(w io.Writer, format Format, entries []types.HistoryEntry) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, entries)
	default:
		data, err := sonic.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("encode history: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
		return nil
	}
}

func writeCSV(w io.Writer, entries []types.HistoryEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"url", "timestamp", "view_id", "title", "outcome", "batch_id"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range entries {
		batchID := ""
		if e.BatchID != nil {
			batchID = *e.BatchID
		}
		row := []string{
			e.URL,
			e.Timestamp.Format(time.RFC3339),
			e.ViewID,
			e.Title,
			string(e.Outcome),
			batchID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ContentType returns the MIME type for a format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Filename suggests a download name for the export
func (f Format) Filename(compressed bool) string {
	name := "history-" + strconv.FormatInt(time.Now().Unix(), 10) + "." + string(f)
	if compressed {
		name += ".gz"
	}
	return name
}
