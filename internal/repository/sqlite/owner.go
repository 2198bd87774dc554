package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/pkg/repository"
)

const ownerColumns = `id, handle, contact, password_hash, created_at, last_login`

func (r *SQLiteRepo) CreateOwner(ctx context.Context, o *models.Owner) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("owner is nil")
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO owners (handle, contact, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		o.Handle, o.Contact, o.PasswordHash, toMillis(o.CreatedAt))
	if err != nil {
		return 0, mapWriteErr("create owner", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	o.ID = id
	return id, nil
}

func (r *SQLiteRepo) GetOwnerByID(ctx context.Context, id int64) (*models.Owner, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+ownerColumns+` FROM owners WHERE id = ?`, id)
	return scanOwner(row)
}

// GetOwnerByLogin matches either the handle or the contact address.
func (r *SQLiteRepo) GetOwnerByLogin(ctx context.Context, login string) (*models.Owner, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+ownerColumns+` FROM owners WHERE handle = ? OR contact = ? ORDER BY id LIMIT 1`, login, login)
	return scanOwner(row)
}

func (r *SQLiteRepo) UpdateOwnerContact(ctx context.Context, id int64, contact string) error {
	res, err := r.conn.Exec(ctx, `UPDATE owners SET contact = ? WHERE id = ?`, contact, id)
	if err != nil {
		return mapWriteErr("update owner contact", err)
	}
	return affectedOrNotFound(res)
}

func (r *SQLiteRepo) UpdateOwnerPassword(ctx context.Context, id int64, hash string) error {
	res, err := r.conn.Exec(ctx, `UPDATE owners SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("update owner password: %w", err)
	}
	return affectedOrNotFound(res)
}

func (r *SQLiteRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := r.conn.Exec(ctx, `UPDATE owners SET last_login = ? WHERE id = ?`, toMillis(at), id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return affectedOrNotFound(res)
}

func scanOwner(row scanner) (*models.Owner, error) {
	var (
		o         models.Owner
		created   int64
		lastLogin sql.NullInt64
	)
	if err := row.Scan(&o.ID, &o.Handle, &o.Contact, &o.PasswordHash, &created, &lastLogin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	o.CreatedAt = fromMillis(created)
	if lastLogin.Valid {
		t := fromMillis(lastLogin.Int64)
		o.LastLogin = &t
	}
	return &o, nil
}
