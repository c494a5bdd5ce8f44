package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	agendadomain "countdown/internal/modules/agenda/domain"
	"countdown/internal/modules/timer/domain"
	timerout "countdown/internal/modules/timer/port/out"
	apperrors "countdown/internal/platform/errors"

	_ "modernc.org/sqlite"
)

// endedAtLayout is fixed width so ended_at sorts lexically.
const endedAtLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteMeetingIndex struct {
	db *sql.DB
}

func NewSQLiteMeetingIndex(dbPath string) (*SQLiteMeetingIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	index := &SQLiteMeetingIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return index, nil
}

var _ timerout.MeetingIndex = (*SQLiteMeetingIndex)(nil)

func (s *SQLiteMeetingIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteMeetingIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS meetings (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  total_elapsed_seconds INTEGER NOT NULL,
  archive_path TEXT
);
CREATE TABLE IF NOT EXISTS meeting_items (
  meeting_id TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  title TEXT NOT NULL,
  color TEXT,
  planned_seconds INTEGER NOT NULL,
  actual_seconds INTEGER NOT NULL,
  overtime_seconds INTEGER NOT NULL,
  completed INTEGER NOT NULL,
  PRIMARY KEY (meeting_id, position)
);
CREATE INDEX IF NOT EXISTS meetings_ended_at ON meetings(ended_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create meeting tables: %w", err)
	}
	return nil
}

func (s *SQLiteMeetingIndex) Record(ctx context.Context, entry timerout.MeetingEntry) error {
	summary := entry.Summary
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin meeting insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const meetingStmt = `
INSERT INTO meetings (id, title, ended_at, total_elapsed_seconds, archive_path)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  ended_at=excluded.ended_at,
  total_elapsed_seconds=excluded.total_elapsed_seconds,
  archive_path=excluded.archive_path;
`
	if _, err := tx.ExecContext(ctx, meetingStmt,
		summary.MeetingID,
		summary.Title,
		summary.EndedAt.UTC().Format(endedAtLayout),
		summary.TotalElapsedSeconds,
		entry.ArchivePath,
	); err != nil {
		return fmt.Errorf("upsert meeting: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM meeting_items WHERE meeting_id = ?`, summary.MeetingID); err != nil {
		return fmt.Errorf("clear meeting items: %w", err)
	}
	const itemStmt = `
INSERT INTO meeting_items (meeting_id, position, title, color, planned_seconds, actual_seconds, overtime_seconds, completed)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`
	for i, item := range summary.Agenda {
		var rec domain.ItemRecord
		if i < len(summary.Records) {
			rec = summary.Records[i]
		}
		if _, err := tx.ExecContext(ctx, itemStmt,
			summary.MeetingID, i, item.Title, string(item.Color),
			rec.PlannedSeconds, rec.ActualSeconds, rec.OvertimeSeconds, rec.Completed,
		); err != nil {
			return fmt.Errorf("insert meeting item %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit meeting: %w", err)
	}
	return nil
}

func (s *SQLiteMeetingIndex) List(ctx context.Context, limit int) ([]timerout.MeetingEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM meetings ORDER BY ended_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan meeting id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close meeting rows: %w", err)
	}
	out := make([]timerout.MeetingEntry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *SQLiteMeetingIndex) Get(ctx context.Context, meetingID string) (timerout.MeetingEntry, error) {
	if meetingID == "" {
		err := s.db.QueryRowContext(ctx, `SELECT id FROM meetings ORDER BY ended_at DESC LIMIT 1`).Scan(&meetingID)
		if errors.Is(err, sql.ErrNoRows) {
			return timerout.MeetingEntry{}, fmt.Errorf("%w: no meetings recorded", apperrors.ErrNotFound)
		}
		if err != nil {
			return timerout.MeetingEntry{}, fmt.Errorf("latest meeting: %w", err)
		}
	}
	return s.load(ctx, meetingID)
}

func (s *SQLiteMeetingIndex) load(ctx context.Context, meetingID string) (timerout.MeetingEntry, error) {
	var (
		entry   timerout.MeetingEntry
		endedAt string
		archive sql.NullString
	)
	summary := &entry.Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, ended_at, total_elapsed_seconds, archive_path FROM meetings WHERE id = ?`, meetingID,
	).Scan(&summary.MeetingID, &summary.Title, &endedAt, &summary.TotalElapsedSeconds, &archive)
	if errors.Is(err, sql.ErrNoRows) {
		return timerout.MeetingEntry{}, fmt.Errorf("%w: meeting %s", apperrors.ErrNotFound, meetingID)
	}
	if err != nil {
		return timerout.MeetingEntry{}, fmt.Errorf("load meeting: %w", err)
	}
	if summary.EndedAt, err = time.Parse(endedAtLayout, endedAt); err != nil {
		return timerout.MeetingEntry{}, fmt.Errorf("parse meeting end time: %w", err)
	}
	entry.ArchivePath = archive.String

	rows, err := s.db.QueryContext(ctx, `
SELECT title, color, planned_seconds, actual_seconds, overtime_seconds, completed
FROM meeting_items WHERE meeting_id = ? ORDER BY position`, meetingID)
	if err != nil {
		return timerout.MeetingEntry{}, fmt.Errorf("load meeting items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			item  agendadomain.Item
			color sql.NullString
			rec   domain.ItemRecord
		)
		if err := rows.Scan(&item.Title, &color, &rec.PlannedSeconds, &rec.ActualSeconds, &rec.OvertimeSeconds, &rec.Completed); err != nil {
			return timerout.MeetingEntry{}, fmt.Errorf("scan meeting item: %w", err)
		}
		item.Color = agendadomain.Color(color.String)
		item.Minutes = rec.PlannedSeconds / 60
		summary.Agenda = append(summary.Agenda, item)
		summary.Records = append(summary.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return timerout.MeetingEntry{}, fmt.Errorf("iterate meeting items: %w", err)
	}
	return entry, nil
}
