package repository

import (
	"context"
	"errors"
	"time"

	"github.com/garnizeh/candidatures/internal/models"
)

// Repository interfaces for domain entities. Every owner-scoped call takes the
// owner id explicitly; rows belonging to another owner behave as missing.

var (
	// ErrNotFound is returned when a row does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("already exists")
)

type OwnerRepo interface {
	CreateOwner(ctx context.Context, o *models.Owner) (int64, error)
	GetOwnerByID(ctx context.Context, id int64) (*models.Owner, error)
	GetOwnerByLogin(ctx context.Context, login string) (*models.Owner, error)
	UpdateOwnerContact(ctx context.Context, id int64, contact string) error
	UpdateOwnerPassword(ctx context.Context, id int64, hash string) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type ApplicationRepo interface {
	CreateApplication(ctx context.Context, a *models.Application) (int64, error)
	GetApplication(ctx context.Context, ownerID, id int64) (*models.Application, error)
	// ListApplications returns the owner's applications newest first. An empty
	// status returns every status.
	ListApplications(ctx context.Context, ownerID int64, status models.Status) ([]models.Application, error)
	// UpdateApplicationFunc loads the row, lets fn modify it and writes it back
	// as one logical update.
	UpdateApplicationFunc(ctx context.Context, ownerID, id int64, fn func(a *models.Application) error) error
	DeleteApplication(ctx context.Context, ownerID, id int64) error
	CountApplications(ctx context.Context, ownerID int64) (int64, error)
}

type CertificationRepo interface {
	CreateCertification(ctx context.Context, c *models.Certification) (int64, error)
	ListCertifications(ctx context.Context, ownerID int64) ([]models.Certification, error)
	DeleteCertification(ctx context.Context, ownerID, id int64) error
	CountCertifications(ctx context.Context, ownerID int64) (int64, error)
}

type SkillRepo interface {
	// CreateSkill inserts a skill or fails with ErrConflict when the owner
	// already has one with that name.
	CreateSkill(ctx context.Context, ownerID int64, name string) (int64, error)
	ListSkills(ctx context.Context, ownerID int64) ([]models.Skill, error)
	DeleteSkill(ctx context.Context, ownerID int64, name string) error
	// SeedSkills inserts the names that are missing and reports how many were added.
	SeedSkills(ctx context.Context, ownerID int64, names []string) (int, error)
	// ResetSkills replaces the owner's skills with names.
	ResetSkills(ctx context.Context, ownerID int64, names []string) error
	CountSkills(ctx context.Context, ownerID int64) (int64, error)
}
