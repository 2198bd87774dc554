package tracker

import (
	"context"
	"strings"

	"github.com/garnizeh/candidatures/internal/models"
)

func (s *Service) CreateCertification(ctx context.Context, ownerID int64, req CreateCertificationRequest) (*models.Certification, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ObtainedOn = strings.TrimSpace(req.ObtainedOn)
	req.ExpiresOn = strings.TrimSpace(req.ExpiresOn)
	if err := s.check(req); err != nil {
		return nil, err
	}

	c := &models.Certification{
		OwnerID:    ownerID,
		Name:       req.Name,
		ObtainedOn: models.StringPtr(req.ObtainedOn),
		ExpiresOn:  models.StringPtr(req.ExpiresOn),
		CreatedAt:  s.now().UTC(),
	}
	if _, err := s.store.CreateCertification(ctx, c); err != nil {
		return nil, s.storeErr(ctx, "create certification", "certification", err)
	}

	s.afterMutation(ctx, "create certification", ownerID)
	return c, nil
}

func (s *Service) ListCertifications(ctx context.Context, ownerID int64) ([]models.Certification, error) {
	certs, err := s.store.ListCertifications(ctx, ownerID)
	if err != nil {
		return nil, s.storeErr(ctx, "list certifications", "certification", err)
	}
	return certs, nil
}

func (s *Service) DeleteCertification(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteCertification(ctx, ownerID, id); err != nil {
		return s.storeErr(ctx, "delete certification", "certification", err)
	}
	s.afterMutation(ctx, "delete certification", ownerID)
	return nil
}

func (s *Service) ListSkills(ctx context.Context, ownerID int64) ([]models.Skill, error) {
	skills, err := s.store.ListSkills(ctx, ownerID)
	if err != nil {
		return nil, s.storeErr(ctx, "list skills", "skill", err)
	}
	return skills, nil
}

// AddSkill inserts a skill. A name the owner already has yields a Conflict
// error and leaves exactly one row.
func (s *Service) AddSkill(ctx context.Context, ownerID int64, req CreateSkillRequest) (*models.Skill, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.check(req); err != nil {
		return nil, err
	}

	id, err := s.store.CreateSkill(ctx, ownerID, req.Name)
	if err != nil {
		return nil, s.storeErr(ctx, "add skill", "skill", err)
	}

	s.afterMutation(ctx, "add skill", ownerID)
	return &models.Skill{ID: id, OwnerID: ownerID, Name: req.Name, CreatedAt: s.now().UTC()}, nil
}

func (s *Service) DeleteSkill(ctx context.Context, ownerID int64, name string) error {
	if err := s.store.DeleteSkill(ctx, ownerID, strings.TrimSpace(name)); err != nil {
		return s.storeErr(ctx, "delete skill", "skill", err)
	}
	s.afterMutation(ctx, "delete skill", ownerID)
	return nil
}

// ResetSkills replaces the owner's skills with the default catalog.
func (s *Service) ResetSkills(ctx context.Context, ownerID int64) error {
	if err := s.store.ResetSkills(ctx, ownerID, models.DefaultSkillCatalog); err != nil {
		return s.storeErr(ctx, "reset skills", "skill", err)
	}
	s.log(ctx).InfoContext(ctx, "skills reset", "owner_id", ownerID, "count", len(models.DefaultSkillCatalog))
	s.afterMutation(ctx, "reset skills", ownerID)
	return nil
}
