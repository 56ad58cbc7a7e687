// Package history keeps the append-only lookup and note audit log.
package history

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Lookup is one audit row for a dictionary actually queried.
type Lookup struct {
	Timestamp  int64
	Word       string
	Definition string
	Language   string
	Lemmatize  bool
	Dictionary string
	Success    bool
}

// Note is one audit row per note assembly, submitted or not.
type Note struct {
	Timestamp     int64
	Content       string
	ExportSuccess bool
	Sentence      string
	Word          string
	Definition    string
	Definition2   string
	Pronunciation string
	Image         string
	Tags          string
}

// Recorder persists history rows in a local sqlite database.
type Recorder struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the history database at path.
func Open(path string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	rec := &Recorder{db: db, now: time.Now}
	if err := rec.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return rec, nil
}

func (r *Recorder) migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS lookups (
			timestamp INTEGER NOT NULL,
			word TEXT NOT NULL,
			definition TEXT,
			language TEXT NOT NULL,
			lemmatization INTEGER NOT NULL,
			source TEXT NOT NULL,
			success INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS notes (
			timestamp INTEGER NOT NULL,
			data TEXT NOT NULL,
			success INTEGER NOT NULL,
			sentence TEXT,
			word TEXT,
			definition TEXT,
			definition2 TEXT,
			pronunciation TEXT,
			image TEXT,
			tags TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_lookups_timestamp ON lookups(timestamp);
		CREATE INDEX IF NOT EXISTS idx_notes_timestamp ON notes(timestamp);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *Recorder) Close() error { return r.db.Close() }

// RecordLookup appends one lookup audit row.
func (r *Recorder) RecordLookup(l Lookup) error {
	if l.Timestamp == 0 {
		l.Timestamp = r.now().Unix()
	}
	_, err := r.db.Exec(
		`INSERT INTO lookups (timestamp, word, definition, language, lemmatization, source, success)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.Timestamp, l.Word, l.Definition, l.Language, boolInt(l.Lemmatize), l.Dictionary, boolInt(l.Success),
	)
	if err != nil {
		return fmt.Errorf("record lookup: %w", err)
	}
	return nil
}

// RecordNote appends one note audit row.
func (r *Recorder) RecordNote(n Note) error {
	if n.Timestamp == 0 {
		n.Timestamp = r.now().Unix()
	}
	_, err := r.db.Exec(
		`INSERT INTO notes (timestamp, data, success, sentence, word, definition, definition2, pronunciation, image, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Timestamp, n.Content, boolInt(n.ExportSuccess), n.Sentence, n.Word,
		n.Definition, n.Definition2, n.Pronunciation, n.Image, n.Tags,
	)
	if err != nil {
		return fmt.Errorf("record note: %w", err)
	}
	return nil
}

// CountLookupsToday returns the number of lookups since local midnight.
func (r *Recorder) CountLookupsToday() (int, error) {
	return r.countSince("lookups", startOfDay(r.now()))
}

// CountNotesToday returns the number of notes since local midnight.
func (r *Recorder) CountNotesToday() (int, error) {
	return r.countSince("notes", startOfDay(r.now()))
}

func (r *Recorder) countSince(table string, since time.Time) (int, error) {
	var count int
	// table is one of two fixed identifiers, never user input.
	err := r.db.QueryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE timestamp >= ?", table),
		since.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

// AllLookups returns every lookup row, oldest first.
func (r *Recorder) AllLookups() ([]Lookup, error) {
	rows, err := r.db.Query(
		`SELECT timestamp, word, definition, language, lemmatization, source, success
		 FROM lookups ORDER BY timestamp`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lookup
	for rows.Next() {
		var l Lookup
		var definition sql.NullString
		var lemmatize, success int
		if err := rows.Scan(&l.Timestamp, &l.Word, &definition, &l.Language, &lemmatize, &l.Dictionary, &success); err != nil {
			return nil, err
		}
		l.Definition = definition.String
		l.Lemmatize = lemmatize != 0
		l.Success = success != 0
		out = append(out, l)
	}
	return out, rows.Err()
}

// AllNotes returns every note row, oldest first.
func (r *Recorder) AllNotes() ([]Note, error) {
	rows, err := r.db.Query(
		`SELECT timestamp, data, success, sentence, word, definition, definition2, pronunciation, image, tags
		 FROM notes ORDER BY timestamp`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		var success int
		var sentence, word, definition, definition2, pronunciation, image, tags sql.NullString
		if err := rows.Scan(&n.Timestamp, &n.Content, &success, &sentence, &word,
			&definition, &definition2, &pronunciation, &image, &tags); err != nil {
			return nil, err
		}
		n.ExportSuccess = success != 0
		n.Sentence = sentence.String
		n.Word = word.String
		n.Definition = definition.String
		n.Definition2 = definition2.String
		n.Pronunciation = pronunciation.String
		n.Image = image.String
		n.Tags = tags.String
		out = append(out, n)
	}
	return out, rows.Err()
}

// ExportLookupsCSV writes the full lookup history as CSV.
func (r *Recorder) ExportLookupsCSV(w io.Writer) error {
	lookups, err := r.AllLookups()
	if err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "word", "definition", "language", "lemmatize", "dictionary", "success"}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, l := range lookups {
		record := []string{
			strconv.FormatInt(l.Timestamp, 10),
			l.Word,
			l.Definition,
			l.Language,
			strconv.FormatBool(l.Lemmatize),
			l.Dictionary,
			strconv.FormatBool(l.Success),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write lookup row: %w", err)
		}
	}
	return nil
}

// ExportNotesCSV writes the full note history as CSV.
func (r *Recorder) ExportNotesCSV(w io.Writer) error {
	notes, err := r.AllNotes()
	if err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "content", "anki_export_success", "sentence", "word",
		"definition", "definition2", "pronunciation", "image", "tags"}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, n := range notes {
		record := []string{
			strconv.FormatInt(n.Timestamp, 10),
			n.Content,
			strconv.FormatBool(n.ExportSuccess),
			n.Sentence,
			n.Word,
			n.Definition,
			n.Definition2,
			n.Pronunciation,
			n.Image,
			n.Tags,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write note row: %w", err)
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
