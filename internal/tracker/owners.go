package tracker

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/pkg/apperror"
	"github.com/garnizeh/candidatures/pkg/repository"
)

var errInvalidCredentials = apperror.Unauthorized("invalid credentials")

// Profile is an owner with the size of their records.
type Profile struct {
	Handle         string     `json:"handle"`
	Contact        string     `json:"contact"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	Applications   int64      `json:"applications"`
	Certifications int64      `json:"certifications"`
	Skills         int64      `json:"skills"`
}

// Register creates an owner and seeds the default skill catalog. The owner is
// kept when seeding fails; ResetSkills restores the catalog later.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Owner, error) {
	req.Handle = strings.TrimSpace(req.Handle)
	req.Contact = strings.TrimSpace(req.Contact)
	if err := s.check(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.Store(err)
	}

	o := &models.Owner{
		Handle:       req.Handle,
		Contact:      req.Contact,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if _, err := s.store.CreateOwner(ctx, o); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperror.Conflict("handle or contact already registered", err)
		}
		return nil, s.storeErr(ctx, "register", "owner", err)
	}

	if _, err := s.store.SeedSkills(ctx, o.ID, models.DefaultSkillCatalog); err != nil {
		s.log(ctx).WarnContext(ctx, "skill catalog seeding failed", "owner_id", o.ID, "error", err)
	}

	s.log(ctx).InfoContext(ctx, "owner registered", "owner_id", o.ID, "handle", o.Handle)
	return o, nil
}

// Authenticate checks a handle or contact and password pair and records the
// login time.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (*models.Owner, error) {
	req.Login = strings.TrimSpace(req.Login)
	if err := s.check(req); err != nil {
		return nil, err
	}

	o, err := s.store.GetOwnerByLogin(ctx, req.Login)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, s.storeErr(ctx, "authenticate", "owner", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(req.Password)) != nil {
		return nil, errInvalidCredentials
	}

	at := s.now().UTC()
	if err := s.store.TouchLastLogin(ctx, o.ID, at); err != nil {
		s.log(ctx).WarnContext(ctx, "could not record last login", "owner_id", o.ID, "error", err)
	} else {
		o.LastLogin = &at
	}
	return o, nil
}

func (s *Service) Profile(ctx context.Context, ownerID int64) (*Profile, error) {
	o, err := s.store.GetOwnerByID(ctx, ownerID)
	if err != nil {
		return nil, s.storeErr(ctx, "profile", "owner", err)
	}

	p := &Profile{Handle: o.Handle, Contact: o.Contact, CreatedAt: o.CreatedAt, LastLogin: o.LastLogin}
	if p.Applications, err = s.store.CountApplications(ctx, ownerID); err != nil {
		return nil, s.storeErr(ctx, "profile", "owner", err)
	}
	if p.Certifications, err = s.store.CountCertifications(ctx, ownerID); err != nil {
		return nil, s.storeErr(ctx, "profile", "owner", err)
	}
	if p.Skills, err = s.store.CountSkills(ctx, ownerID); err != nil {
		return nil, s.storeErr(ctx, "profile", "owner", err)
	}
	return p, nil
}

func (s *Service) UpdateContact(ctx context.Context, ownerID int64, req UpdateProfileRequest) error {
	req.Contact = strings.TrimSpace(req.Contact)
	if err := s.check(req); err != nil {
		return err
	}
	if err := s.store.UpdateOwnerContact(ctx, ownerID, req.Contact); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return apperror.Conflict("contact already in use", err)
		}
		return s.storeErr(ctx, "update contact", "owner", err)
	}
	s.afterMutation(ctx, "update contact", ownerID)
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, ownerID int64, req ChangePasswordRequest) error {
	if err := s.check(req); err != nil {
		return err
	}

	o, err := s.store.GetOwnerByID(ctx, ownerID)
	if err != nil {
		return s.storeErr(ctx, "change password", "owner", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return apperror.Validation("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return apperror.Store(err)
	}
	if err := s.store.UpdateOwnerPassword(ctx, ownerID, string(hash)); err != nil {
		return s.storeErr(ctx, "change password", "owner", err)
	}
	s.afterMutation(ctx, "change password", ownerID)
	return nil
}
