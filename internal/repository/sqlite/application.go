package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/pkg/repository"
)

const applicationColumns = `id, owner_id, company, position, status, submitted_date, posting_link,
	contact_email, contact_phone, skills_json, notes, created_at, follow_ups_json`

func (r *SQLiteRepo) CreateApplication(ctx context.Context, a *models.Application) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("application is nil")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = models.StatusSubmitted
	}

	skills, follow, err := encodeApplicationLists(a)
	if err != nil {
		return 0, err
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO applications
		(company, position, status, submitted_date, posting_link, contact_email, contact_phone, skills_json, notes, created_at, follow_ups_json, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Company, a.Position, string(a.Status), a.SubmittedDate, a.PostingLink, a.ContactEmail, a.ContactPhone,
		skills, a.Notes, toMillis(a.CreatedAt), follow, a.OwnerID)
	if err != nil {
		return 0, mapWriteErr("create application", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	a.ID = id
	return id, nil
}

func (r *SQLiteRepo) GetApplication(ctx context.Context, ownerID, id int64) (*models.Application, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanApplication(row)
}

func (r *SQLiteRepo) ListApplications(ctx context.Context, ownerID int64, status models.Status) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE owner_id = ?`
	args := []any{ownerID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	out := []models.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateApplicationFunc(ctx context.Context, ownerID, id int64, fn func(a *models.Application) error) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ? AND owner_id = ?`, id, ownerID)
	a, err := scanApplication(row)
	if err != nil {
		return err
	}

	if err := fn(a); err != nil {
		return err
	}

	skills, follow, err := encodeApplicationLists(a)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE applications SET
		company = ?, position = ?, status = ?, submitted_date = ?, posting_link = ?, contact_email = ?,
		contact_phone = ?, skills_json = ?, notes = ?, follow_ups_json = ?
		WHERE id = ? AND owner_id = ?`,
		a.Company, a.Position, string(a.Status), a.SubmittedDate, a.PostingLink, a.ContactEmail,
		a.ContactPhone, skills, a.Notes, follow, id, ownerID); err != nil {
		return mapWriteErr("update application", err)
	}

	return tx.Commit()
}

func (r *SQLiteRepo) DeleteApplication(ctx context.Context, ownerID, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM applications WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return affectedOrNotFound(res)
}

func (r *SQLiteRepo) CountApplications(ctx context.Context, ownerID int64) (int64, error) {
	var cnt int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE owner_id = ?`, ownerID).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func encodeApplicationLists(a *models.Application) (string, string, error) {
	skills := a.Skills
	if skills == nil {
		skills = []string{}
	}
	follow := a.FollowUps
	if follow == nil {
		follow = []models.FollowUp{}
	}

	s, err := encodeJSON(skills)
	if err != nil {
		return "", "", fmt.Errorf("encode skills: %w", err)
	}
	f, err := encodeJSON(follow)
	if err != nil {
		return "", "", fmt.Errorf("encode follow ups: %w", err)
	}
	return s, f, nil
}

func scanApplication(row scanner) (*models.Application, error) {
	var a models.Application
	var status, skillsJSON, followJSON string
	var submitted, link, email, phone, notes sql.NullString
	var created int64
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Company, &a.Position, &status, &submitted, &link,
		&email, &phone, &skillsJSON, &notes, &created, &followJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	a.Status = models.Status(status)
	a.SubmittedDate = nullString(submitted)
	a.PostingLink = nullString(link)
	a.ContactEmail = nullString(email)
	a.ContactPhone = nullString(phone)
	a.Notes = nullString(notes)
	a.CreatedAt = fromMillis(created)

	a.Skills = []string{}
	if skillsJSON != "" {
		if err := json.Unmarshal([]byte(skillsJSON), &a.Skills); err != nil {
			return nil, fmt.Errorf("decode skills of application %d: %w", a.ID, err)
		}
	}
	a.FollowUps = []models.FollowUp{}
	if followJSON != "" {
		if err := json.Unmarshal([]byte(followJSON), &a.FollowUps); err != nil {
			return nil, fmt.Errorf("decode follow ups of application %d: %w", a.ID, err)
		}
	}
	return &a, nil
}
