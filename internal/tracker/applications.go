package tracker

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/pkg/apperror"
	"github.com/garnizeh/candidatures/pkg/repository"
)

// CreateApplication stores a new application. The status defaults to
// submitted and the follow-up history starts empty.
func (s *Service) CreateApplication(ctx context.Context, ownerID int64, req CreateApplicationRequest) (*models.Application, error) {
	req.normalize()
	if err := s.check(req); err != nil {
		return nil, err
	}

	status, _ := models.ParseStatus(string(req.Status))
	a := &models.Application{
		OwnerID:       ownerID,
		Company:       req.Company,
		Position:      req.Position,
		Status:        status,
		SubmittedDate: models.StringPtr(req.SubmittedDate),
		PostingLink:   models.StringPtr(req.PostingLink),
		ContactEmail:  models.StringPtr(req.ContactEmail),
		ContactPhone:  models.StringPtr(req.ContactPhone),
		Skills:        req.Skills,
		Notes:         models.StringPtr(req.Notes),
		CreatedAt:     s.now().UTC(),
		FollowUps:     []models.FollowUp{},
	}
	if _, err := s.store.CreateApplication(ctx, a); err != nil {
		return nil, s.storeErr(ctx, "create application", "application", err)
	}

	s.log(ctx).InfoContext(ctx, "application created", "owner_id", ownerID, "application_id", a.ID)
	s.afterMutation(ctx, "create application", ownerID)
	return a, nil
}

func (s *Service) GetApplication(ctx context.Context, ownerID, id int64) (*models.Application, error) {
	a, err := s.store.GetApplication(ctx, ownerID, id)
	if err != nil {
		return nil, s.storeErr(ctx, "get application", "application", err)
	}
	return a, nil
}

// ListApplications returns the owner's applications newest first.
func (s *Service) ListApplications(ctx context.Context, ownerID int64) ([]models.Application, error) {
	apps, err := s.store.ListApplications(ctx, ownerID, "")
	if err != nil {
		return nil, s.storeErr(ctx, "list applications", "application", err)
	}
	return apps, nil
}

// UpdateApplication replaces every field of the application.
func (s *Service) UpdateApplication(ctx context.Context, ownerID, id int64, req UpdateApplicationRequest) (*models.Application, error) {
	req.normalize()
	if err := s.check(req); err != nil {
		return nil, err
	}
	for i := 1; i < len(req.FollowUps); i++ {
		if req.FollowUps[i].Timestamp.Before(req.FollowUps[i-1].Timestamp) {
			return nil, apperror.Validation("follow_ups must be in chronological order")
		}
	}

	status, _ := models.ParseStatus(string(req.Status))
	var updated models.Application
	err := s.store.UpdateApplicationFunc(ctx, ownerID, id, func(a *models.Application) error {
		a.Company = req.Company
		a.Position = req.Position
		a.Status = status
		a.SubmittedDate = models.StringPtr(req.SubmittedDate)
		a.PostingLink = models.StringPtr(req.PostingLink)
		a.ContactEmail = models.StringPtr(req.ContactEmail)
		a.ContactPhone = models.StringPtr(req.ContactPhone)
		a.Skills = req.Skills
		a.Notes = models.StringPtr(req.Notes)
		if req.FollowUps != nil {
			a.FollowUps = req.FollowUps
		}
		updated = *a
		return nil
	})
	if err != nil {
		return nil, s.storeErr(ctx, "update application", "application", err)
	}

	s.afterMutation(ctx, "update application", ownerID)
	return &updated, nil
}

// RecordFollowUp appends a follow-up stamped with the current time and moves
// the application to followedUp, whatever its status was. An id that does
// not exist for the owner is ignored and reported as success with a nil
// application.
func (s *Service) RecordFollowUp(ctx context.Context, ownerID, id int64, req FollowUpRequest) (*models.Application, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := s.check(req); err != nil {
		return nil, err
	}

	var updated models.Application
	err := s.store.UpdateApplicationFunc(ctx, ownerID, id, func(a *models.Application) error {
		ts := s.now().UTC()
		if n := len(a.FollowUps); n > 0 && ts.Before(a.FollowUps[n-1].Timestamp) {
			ts = a.FollowUps[n-1].Timestamp
		}
		a.FollowUps = append(a.FollowUps, models.FollowUp{Timestamp: ts, Message: req.Message})
		a.Status = models.StatusFollowedUp
		updated = *a
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		s.log(ctx).DebugContext(ctx, "follow-up ignored for unknown application", "owner_id", ownerID, "application_id", id)
		return nil, nil
	}
	if err != nil {
		return nil, s.storeErr(ctx, "record follow-up", "application", err)
	}

	s.afterMutation(ctx, "record follow-up", ownerID)
	return &updated, nil
}

func (s *Service) DeleteApplication(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteApplication(ctx, ownerID, id); err != nil {
		return s.storeErr(ctx, "delete application", "application", err)
	}
	s.log(ctx).InfoContext(ctx, "application deleted", "owner_id", ownerID, "application_id", id)
	s.afterMutation(ctx, "delete application", ownerID)
	return nil
}

// Search matches query case-insensitively against company, position and
// notes, and status exactly. With neither filter the result is empty. An
// unknown status matches nothing.
func (s *Service) Search(ctx context.Context, ownerID int64, query, status string) ([]models.Application, error) {
	query = strings.TrimSpace(query)
	status = strings.TrimSpace(status)
	out := []models.Application{}
	if query == "" && status == "" {
		return out, nil
	}

	var st models.Status
	if status != "" {
		parsed, ok := models.ParseStatus(status)
		if !ok {
			return out, nil
		}
		st = parsed
	}

	apps, err := s.store.ListApplications(ctx, ownerID, st)
	if err != nil {
		return nil, s.storeErr(ctx, "search applications", "application", err)
	}
	if query == "" {
		return apps, nil
	}

	fold := cases.Fold()
	needle := fold.String(query)
	for _, a := range apps {
		notes := ""
		if a.Notes != nil {
			notes = *a.Notes
		}
		if strings.Contains(fold.String(a.Company), needle) ||
			strings.Contains(fold.String(a.Position), needle) ||
			strings.Contains(fold.String(notes), needle) {
			out = append(out, a)
		}
	}
	return out, nil
}
