package sqlite

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/entityaxis/internal/ctxlog"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// maxLine bounds a single JSONL record.
const maxLine = 4 << 20

// decodeLines returns each non-empty, parseable line of r as a
// json.RawMessage. Malformed lines are skipped.
func decodeLines(r io.Reader) ([]json.RawMessage, int, error) {
	var (
		records []json.RawMessage
		skipped int
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			skipped++
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, err
	}
	return records, skipped, nil
}

// readJSONL reads a JSONL file. See decodeLines.
func readJSONL(path string) ([]json.RawMessage, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, skipped, err := decodeLines(f)
	if err != nil {
		return nil, skipped, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, skipped, nil
}

// encodeLines writes each record followed by a newline.
func encodeLines(w io.Writer, records []json.RawMessage) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.Write(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing buffer: %w", err)
	}
	return nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := encodeLines(tmp, records); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// documents returns the committed records of the collection as stored JSON,
// in insertion order.
func (c *Collection[D, DK]) documents(ctx context.Context) ([]json.RawMessage, error) {
	h, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	rows, err := h.tx.QueryContext(ctx, fmt.Sprintf("SELECT data FROM %s ORDER BY seq", c.name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.name, err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(data))
	}
	return out, rows.Err()
}

// ExportJSONL writes every record as one JSON object per line and returns
// the number written.
func (c *Collection[D, DK]) ExportJSONL(ctx context.Context, w io.Writer) (int, error) {
	records, err := c.documents(ctx)
	if err != nil {
		return 0, err
	}
	if err := encodeLines(w, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ExportFile writes the collection to path atomically.
func (c *Collection[D, DK]) ExportFile(ctx context.Context, path string) (int, error) {
	records, err := c.documents(ctx)
	if err != nil {
		return 0, err
	}
	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ImportJSONL reads one record per line from r and stores each under its
// own key, replacing any record already stored there. Malformed lines are
// skipped. The import is a single transaction.
func (c *Collection[D, DK]) ImportJSONL(ctx context.Context, r io.Reader) (int, error) {
	records, skipped, err := decodeLines(r)
	if err != nil {
		return 0, err
	}
	return c.importRecords(ctx, records, skipped)
}

// ImportFile imports the JSONL file at path. See ImportJSONL.
func (c *Collection[D, DK]) ImportFile(ctx context.Context, path string) (int, error) {
	records, skipped, err := readJSONL(path)
	if err != nil {
		return 0, err
	}
	return c.importRecords(ctx, records, skipped)
}

func (c *Collection[D, DK]) importRecords(ctx context.Context, records []json.RawMessage, skipped int) (int, error) {
	h, err := c.open(ctx)
	if err != nil {
		return 0, err
	}
	defer h.Close()

	upsert := fmt.Sprintf(`INSERT INTO %s (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`, c.name)

	var zero DK
	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		d := newRecord[D]()
		if err := json.Unmarshal(raw, d); err != nil {
			return 0, fmt.Errorf("record %d: %w: %w", i+1, types.ErrInvalidData, err)
		}
		key := d.GetID()
		if key == zero {
			return 0, fmt.Errorf("record %d of %s has no key", i+1, c.name)
		}
		data, err := json.Marshal(d)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		if _, err := h.tx.ExecContext(ctx, upsert, c.keys.Encode(key), string(data), now()); err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		if err := c.keys.Observe(ctx, h.tx, c.name, key); err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	if err := h.Commit(ctx); err != nil {
		return 0, err
	}
	ctxlog.FromContext(ctx).Info("imported records",
		"collection", c.name, "count", len(records), "skipped", skipped)
	return len(records), nil
}
