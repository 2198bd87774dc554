package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/pkg/repository"
)

// CreateSkill relies on the (name, owner_id) unique key: a duplicate is
// detected by the insert itself, never by a prior lookup.
func (r *SQLiteRepo) CreateSkill(ctx context.Context, ownerID int64, name string) (int64, error) {
	res, err := r.conn.Exec(ctx, `INSERT INTO skills (name, created_at, owner_id) VALUES (?, ?, ?)
		ON CONFLICT(name, owner_id) DO NOTHING`, name, now(), ownerID)
	if err != nil {
		return 0, mapWriteErr("create skill", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("skill %q: %w", name, repository.ErrConflict)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) ListSkills(ctx context.Context, ownerID int64) ([]models.Skill, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, owner_id, name, created_at FROM skills WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	out := []models.Skill{}
	for rows.Next() {
		var s models.Skill
		var created int64
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &created); err != nil {
			return nil, err
		}
		s.CreatedAt = fromMillis(created)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) DeleteSkill(ctx context.Context, ownerID int64, name string) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM skills WHERE name = ? AND owner_id = ?`, name, ownerID)
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	return affectedOrNotFound(res)
}

func (r *SQLiteRepo) SeedSkills(ctx context.Context, ownerID int64, names []string) (int, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	added, err := insertSkills(ctx, tx, ownerID, names)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

func (r *SQLiteRepo) ResetSkills(ctx context.Context, ownerID int64, names []string) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM skills WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("clear skills: %w", err)
	}
	if _, err := insertSkills(ctx, tx, ownerID, names); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepo) CountSkills(ctx context.Context, ownerID int64) (int64, error) {
	var cnt int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM skills WHERE owner_id = ?`, ownerID).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func insertSkills(ctx context.Context, tx *sql.Tx, ownerID int64, names []string) (int, error) {
	ts := now()
	added := 0
	for _, name := range names {
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO skills (name, created_at, owner_id) VALUES (?, ?, ?)`, name, ts, ownerID)
		if err != nil {
			return added, fmt.Errorf("insert skill %q: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return added, fmt.Errorf("insert skill %q: %w", name, err)
		}
		if n > 0 {
			added++
		}
	}
	return added, nil
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
