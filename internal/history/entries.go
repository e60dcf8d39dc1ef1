package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ripmedia/internal/model"
)

// Entry is one finished item.
type Entry struct {
	ID         int64           `json:"id"`
	BatchID    string          `json:"batch_id,omitempty"`
	URL        string          `json:"url"`
	Title      string          `json:"title,omitempty"`
	Provider   model.Provider  `json:"provider,omitempty"`
	Kind       model.MediaKind `json:"kind,omitempty"`
	Status     model.Status    `json:"status"`
	Stage      string          `json:"stage,omitempty"`
	Error      string          `json:"error,omitempty"`
	Paths      []string        `json:"paths"`
	StartedAt  time.Time       `json:"started_at,omitempty"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Batch summarizes one enqueue call or CLI invocation.
type Batch struct {
	ID         string    `json:"id"`
	Source     string    `json:"source,omitempty"`
	Total      int       `json:"total"`
	Saved      int       `json:"saved"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// ListOptions filters List. A non-positive Limit selects DefaultListLimit.
type ListOptions struct {
	Limit   int
	BatchID string
	Status  model.Status
}

// DefaultListLimit bounds List when no limit is given.
const DefaultListLimit = 50

const entryColumns = "id, batch_id, url, title, provider, kind, status, stage, error_message, paths_json, started_at, finished_at"

// Record inserts a finished item and returns its row ID.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if strings.TrimSpace(e.URL) == "" {
		return 0, fmt.Errorf("record history: url is required")
	}
	if !e.Status.IsTerminal() {
		return 0, fmt.Errorf("record history: status %q is not terminal", e.Status)
	}
	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now().UTC()
	}
	paths := e.Paths
	if paths == nil {
		paths = []string{}
	}
	pathsJSON, err := json.Marshal(paths)
	if err != nil {
		return 0, fmt.Errorf("encode paths: %w", err)
	}
	res, err := s.exec(ctx,
		`INSERT INTO items (batch_id, url, title, provider, kind, status, stage, error_message, paths_json, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.BatchID, e.URL, nullString(e.Title), nullString(string(e.Provider)), nullString(string(e.Kind)),
		string(e.Status), nullString(e.Stage), nullString(e.Error), string(pathsJSON),
		formatTime(e.StartedAt), formatTime(e.FinishedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert history item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history item id: %w", err)
	}
	return id, nil
}

// List returns finished items, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var (
		where []string
		args  []any
	)
	if opts.BatchID != "" {
		where = append(where, "batch_id = ?")
		args = append(args, opts.BatchID)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opts.Status))
	}
	query := "SELECT " + entryColumns + " FROM items"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY finished_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// RecordBatch inserts or replaces a batch summary.
func (s *Store) RecordBatch(ctx context.Context, b Batch) error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("record batch: id is required")
	}
	if b.FinishedAt.IsZero() {
		b.FinishedAt = time.Now().UTC()
	}
	_, err := s.exec(ctx,
		`INSERT OR REPLACE INTO batches (id, source, total, saved, failed, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, nullString(b.Source), b.Total, b.Saved, b.Failed, formatTime(b.StartedAt), formatTime(b.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// Batches returns recent batch summaries, newest first.
func (s *Store) Batches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT id, source, total, saved, failed, started_at, finished_at FROM batches ORDER BY finished_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var (
			b                   Batch
			source              sql.NullString
			startedRaw, doneRaw sql.NullString
		)
		if err := rows.Scan(&b.ID, &source, &b.Total, &b.Saved, &b.Failed, &startedRaw, &doneRaw); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.Source = source.String
		b.StartedAt = parseTime(startedRaw)
		b.FinishedAt = parseTime(doneRaw)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Clear removes every item and batch and returns the number of items deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx, "DELETE FROM items")
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	if _, err := s.exec(ctx, "DELETE FROM batches"); err != nil {
		return 0, fmt.Errorf("clear batches: %w", err)
	}
	return res.RowsAffected()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		e                                    Entry
		title, provider, kind, stage, errMsg sql.NullString
		pathsJSON, startedRaw, finishedRaw   sql.NullString
		status                               string
	)
	if err := scanner.Scan(&e.ID, &e.BatchID, &e.URL, &title, &provider, &kind, &status, &stage, &errMsg, &pathsJSON, &startedRaw, &finishedRaw); err != nil {
		return Entry{}, fmt.Errorf("scan history item: %w", err)
	}
	e.Title = title.String
	e.Provider = model.Provider(provider.String)
	e.Kind = model.MediaKind(kind.String)
	e.Status = model.Status(status)
	e.Stage = stage.String
	e.Error = errMsg.String
	e.StartedAt = parseTime(startedRaw)
	e.FinishedAt = parseTime(finishedRaw)
	e.Paths = []string{}
	if pathsJSON.Valid && pathsJSON.String != "" {
		if err := json.Unmarshal([]byte(pathsJSON.String), &e.Paths); err != nil {
			return Entry{}, fmt.Errorf("decode paths for history item %d: %w", e.ID, err)
		}
	}
	return e, nil
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}

func formatTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
