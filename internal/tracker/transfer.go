package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/internal/stats"
	"github.com/garnizeh/candidatures/internal/transfer"
	"github.com/garnizeh/candidatures/pkg/apperror"
)

// ImportResult reports how many rows were inserted.
type ImportResult struct {
	Count int `json:"count"`
}

// Import inserts the records of src one by one for the owner. Each row gets a
// new id and the current time as creation time. The first failing row stops
// the import; rows inserted before it are kept and counted.
func (s *Service) Import(ctx context.Context, ownerID int64, src transfer.Source) (ImportResult, error) {
	var res ImportResult
	err := s.importRows(ctx, ownerID, src, &res)
	if res.Count > 0 {
		s.afterMutation(ctx, "import", ownerID)
	}
	if err != nil {
		s.log(ctx).WarnContext(ctx, "import stopped", "owner_id", ownerID, "imported", res.Count, "error", err)
		return res, err
	}
	s.log(ctx).InfoContext(ctx, "import finished", "owner_id", ownerID, "imported", res.Count)
	return res, nil
}

func (s *Service) importRows(ctx context.Context, ownerID int64, src transfer.Source, res *ImportResult) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		req := requestFromApplication(rec)
		req.normalize()
		if err := s.check(req); err != nil {
			return apperror.Validation(fmt.Sprintf("row %d: %s", res.Count+1, apperror.Message(err)))
		}

		follow := rec.FollowUps
		if follow == nil {
			follow = []models.FollowUp{}
		}
		a := &models.Application{
			OwnerID:       ownerID,
			Company:       req.Company,
			Position:      req.Position,
			Status:        rec.Status,
			SubmittedDate: models.StringPtr(req.SubmittedDate),
			PostingLink:   models.StringPtr(req.PostingLink),
			ContactEmail:  models.StringPtr(req.ContactEmail),
			ContactPhone:  models.StringPtr(req.ContactPhone),
			Skills:        req.Skills,
			Notes:         models.StringPtr(req.Notes),
			CreatedAt:     s.now().UTC(),
			FollowUps:     follow,
		}
		if !a.Status.Valid() {
			a.Status = models.StatusSubmitted
		}
		if _, err := s.store.CreateApplication(ctx, a); err != nil {
			return s.storeErr(ctx, "import", "application", err)
		}
		res.Count++
	}
}

// Export collects everything the owner has for the JSON document.
func (s *Service) Export(ctx context.Context, ownerID int64) (transfer.Document, error) {
	apps, err := s.ListApplications(ctx, ownerID)
	if err != nil {
		return transfer.Document{}, err
	}
	certs, err := s.ListCertifications(ctx, ownerID)
	if err != nil {
		return transfer.Document{}, err
	}
	skills, err := s.ListSkills(ctx, ownerID)
	if err != nil {
		return transfer.Document{}, err
	}
	return transfer.NewDocument(apps, certs, skills, s.now().UTC()), nil
}

func (s *Service) Stats(ctx context.Context, ownerID int64) (stats.Summary, error) {
	apps, err := s.ListApplications(ctx, ownerID)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(apps), nil
}

func (s *Service) AdvancedStats(ctx context.Context, ownerID int64) (stats.Advanced, error) {
	apps, err := s.ListApplications(ctx, ownerID)
	if err != nil {
		return stats.Advanced{}, err
	}
	return stats.Compute(apps), nil
}
