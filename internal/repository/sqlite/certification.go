package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garnizeh/candidatures/internal/models"
)

func (r *SQLiteRepo) CreateCertification(ctx context.Context, c *models.Certification) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("certification is nil")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO certifications (name, obtained_on, expires_on, created_at, owner_id) VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.ObtainedOn, c.ExpiresOn, toMillis(c.CreatedAt), c.OwnerID)
	if err != nil {
		return 0, mapWriteErr("create certification", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

func (r *SQLiteRepo) ListCertifications(ctx context.Context, ownerID int64) ([]models.Certification, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, owner_id, name, obtained_on, expires_on, created_at FROM certifications WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list certifications: %w", err)
	}
	defer rows.Close()

	out := []models.Certification{}
	for rows.Next() {
		var c models.Certification
		var obtained, expires sql.NullString
		var created int64
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &obtained, &expires, &created); err != nil {
			return nil, err
		}
		c.ObtainedOn = nullString(obtained)
		c.ExpiresOn = nullString(expires)
		c.CreatedAt = fromMillis(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) DeleteCertification(ctx context.Context, ownerID, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM certifications WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete certification: %w", err)
	}
	return affectedOrNotFound(res)
}

func (r *SQLiteRepo) CountCertifications(ctx context.Context, ownerID int64) (int64, error) {
	var cnt int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM certifications WHERE owner_id = ?`, ownerID).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}
