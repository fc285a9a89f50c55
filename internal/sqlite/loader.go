package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// tableFile maps a table to its JSONL file. JSON columns hold arrays that
// are stored as text in SQLite and as real JSON values in the file.
type tableFile struct {
	file        string
	table       string
	columns     []string
	jsonColumns []string
	orderBy     string
}

var (
	objectsFile = tableFile{
		file:    objectsJSONL,
		table:   "objects",
		columns: []string{"object_id", "object_type", "data_ref", "x", "y"},
		orderBy: "rowid",
	}
	cardsFile = tableFile{
		file:  cardsJSONL,
		table: "cards",
		columns: []string{
			"card_id", "title", "summary", "description", "tags", "said_by",
			"stakeholder", "url", "card_type", "created_at", "updated_at",
		},
		jsonColumns: []string{"tags"},
		orderBy:     "rowid",
	}
	boxesFile = tableFile{
		file:        boxesJSONL,
		table:       "boxes",
		columns:     []string{"box_id", "title", "summary", "tags", "created_at", "updated_at"},
		jsonColumns: []string{"tags"},
		orderBy:     "rowid",
	}
	boxMembersFile = tableFile{
		file:    boxMembersJSONL,
		table:   "box_members",
		columns: []string{"box_id", "object_id", "ordinal"},
		orderBy: "box_id, ordinal",
	}
)

var tableFiles = []tableFile{objectsFile, cardsFile, boxesFile, boxMembersFile}

func (tf tableFile) isJSON(col string) bool {
	for _, c := range tf.jsonColumns {
		if c == col {
			return true
		}
	}
	return false
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records
// into the matching table. Loading is transactional: all succeed or the
// database stays empty. Malformed lines, records that violate constraints,
// and unknown fields are skipped.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, tf := range tableFiles {
		records, err := readJSONL(filepath.Join(dataDir, tf.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", tf.file, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, tf, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", tf.file, tf.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts each record using only the columns it carries, so
// columns missing from older files fall back to their defaults.
func insertRecords(tx *sql.Tx, tf tableFile, records []json.RawMessage) error {
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}

		cols := make([]string, 0, len(tf.columns))
		args := make([]any, 0, len(tf.columns))
		for _, col := range tf.columns {
			val, ok := obj[col]
			if !ok || val == nil {
				continue
			}
			switch v := val.(type) {
			case map[string]any, []any:
				b, err := json.Marshal(v)
				if err != nil {
					continue
				}
				val = string(b)
			}
			cols = append(cols, col)
			args = append(args, val)
		}
		if len(cols) == 0 {
			continue
		}

		insertSQL := fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			tf.table,
			strings.Join(cols, ", "),
			strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
		)
		if _, err := tx.Exec(insertSQL, args...); err != nil {
			// Records that violate constraints are skipped.
			continue
		}
	}
	return nil
}

// persistTable rewrites the JSONL file for tf from the current table
// contents.
func (b *Backend) persistTable(tf tableFile) error {
	rows, err := b.db.Query(fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s",
		strings.Join(tf.columns, ", "), tf.table, tf.orderBy,
	))
	if err != nil {
		return fmt.Errorf("querying %s for JSONL: %w", tf.table, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		values := make([]any, len(tf.columns))
		ptrs := make([]any, len(tf.columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scanning %s row: %w", tf.table, err)
		}

		rec := make(map[string]any, len(tf.columns))
		for i, col := range tf.columns {
			v := values[i]
			if raw, ok := v.([]byte); ok {
				v = string(raw)
			}
			if s, ok := v.(string); ok && tf.isJSON(col) && json.Valid([]byte(s)) {
				v = json.RawMessage(s)
			}
			rec[col] = v
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling %s row: %w", tf.table, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s for JSONL: %w", tf.table, err)
	}

	return writeJSONL(filepath.Join(b.config.DataDir, tf.file), records)
}

func (b *Backend) persist(tfs ...tableFile) error {
	for _, tf := range tfs {
		if err := b.persistTable(tf); err != nil {
			return err
		}
	}
	return nil
}
