package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ellinstar/offering-app/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the local record store: contribution records, the
// category registry and an opaque meta key/value table.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertRecords persists an entry batch in a single transaction: either every
// row is durably recorded with an assigned id, or none are. The returned
// slice carries the assigned ids.
func (r *SQLiteRepository) InsertRecords(ctx context.Context, records []core.ContributionRecord) ([]core.ContributionRecord, error) {
	if len(records) == 0 {
		return nil, errors.New("empty batch")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (date, year, week_end, type, person, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	out := make([]core.ContributionRecord, len(records))
	for i, rec := range records {
		res, err := stmt.ExecContext(ctx,
			rec.Date, rec.Year, rec.WeekEnd, rec.Type, rec.Person, rec.Amount, rec.CreatedAt.Unix())
		if err != nil {
			return nil, fmt.Errorf("insert record %d of %d: %w", i+1, len(records), err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("record id: %w", err)
		}
		out[i] = rec
		out[i].ID = id
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch insert: %w", err)
	}

	slog.InfoContext(ctx, "Record batch saved",
		"count", len(out),
		"date", records[0].Date,
		"type", records[0].Type)

	return out, nil
}

// GetAllRecords returns every contribution record. Order is not part of the
// contract; callers re-derive groupings from the full set.
func (r *SQLiteRepository) GetAllRecords(ctx context.Context) ([]core.ContributionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, year, week_end, type, person, amount, created_at
		FROM records`)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	defer rows.Close()

	var out []core.ContributionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// GetRecord retrieves a single record by id.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (core.ContributionRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, year, week_end, type, person, amount, created_at
		FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return core.ContributionRecord{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (core.ContributionRecord, error) {
	var rec core.ContributionRecord
	var createdAt int64
	if err := s.Scan(&rec.ID, &rec.Date, &rec.Year, &rec.WeekEnd, &rec.Type, &rec.Person, &rec.Amount, &createdAt); err != nil {
		return core.ContributionRecord{}, fmt.Errorf("scan record: %w", err)
	}
	rec.CreatedAt = time.Unix(createdAt, 0)
	return rec, nil
}

// GetTypes returns the category registry sorted by name.
func (r *SQLiteRepository) GetTypes(ctx context.Context) ([]core.ContributionType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("get types: %w", err)
	}
	defer rows.Close()

	var out []core.ContributionType
	for rows.Next() {
		var t core.ContributionType
		if err := rows.Scan(&t.Name); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate types: %w", err)
	}
	return out, nil
}

// AddType registers a category name. The name is the identity, so adding an
// existing name is a no-op.
func (r *SQLiteRepository) AddType(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO types (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("add type %q: %w", name, err)
	}
	return nil
}

// GetMeta reads an opaque meta value; ok is false when the key is absent.
func (r *SQLiteRepository) GetMeta(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get meta %q: %w", key, err)
	}
	return value, true, nil
}

// SetMeta upserts an opaque meta value.
func (r *SQLiteRepository) SetMeta(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %q: %w", key, err)
	}
	return nil
}

// DeleteMeta removes a meta key; deleting a missing key is a no-op.
func (r *SQLiteRepository) DeleteMeta(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meta WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete meta %q: %w", key, err)
	}
	return nil
}

// PendingMirror returns records that have not yet been mirrored, oldest
// first, up to limit. Backup sweep for the mirror worker.
func (r *SQLiteRepository) PendingMirror(ctx context.Context, limit int) ([]core.ContributionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, year, week_end, type, person, amount, created_at
		FROM records WHERE mirrored = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending mirror records: %w", err)
	}
	defer rows.Close()

	var out []core.ContributionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending mirror records: %w", err)
	}
	return out, nil
}

// UnmirroredByIDs returns the subset of the given records that still await
// mirroring. Lets redelivered messages skip rows a previous attempt already
// copied.
func (r *SQLiteRepository) UnmirroredByIDs(ctx context.Context, ids []int64) ([]core.ContributionRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, year, week_end, type, person, amount, created_at
		FROM records WHERE mirrored = 0 AND id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("unmirrored records by id: %w", err)
	}
	defer rows.Close()

	var out []core.ContributionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unmirrored records: %w", err)
	}
	return out, nil
}

// MarkMirrored flags a record as copied to the mirror.
func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE records SET mirrored = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark mirrored %d: %w", id, err)
	}
	return nil
}

// MarkMirrorError counts a failed mirror attempt; the record stays pending.
func (r *SQLiteRepository) MarkMirrorError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE records SET mirror_attempts = mirror_attempts + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark mirror error %d: %w", id, err)
	}
	slog.WarnContext(ctx, "Record mirror attempt failed", "id", id)
	return nil
}
