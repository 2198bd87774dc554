// Package tracker implements the application lifecycle on top of the record
// store: every operation is scoped to an explicit owner id and successful
// mutations are followed by a database snapshot.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/candidatures/internal/logging"
	"github.com/garnizeh/candidatures/pkg/apperror"
	"github.com/garnizeh/candidatures/pkg/repository"
)

// Store is the persistence the service needs.
type Store interface {
	repository.OwnerRepo
	repository.ApplicationRepo
	repository.CertificationRepo
	repository.SkillRepo
}

// Snapshotter takes a point-in-time copy of the database.
type Snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
}

type Service struct {
	store      Store
	backups    Snapshotter
	validate   *validator.Validate
	now        func() time.Time
	logger     *slog.Logger
	bcryptCost int
}

type Option func(*Service)

// WithBackups enables a snapshot after each successful mutation.
func WithBackups(b Snapshotter) Option {
	return func(s *Service) { s.backups = b }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithValidator(v *validator.Validate) Option {
	return func(s *Service) {
		if v != nil {
			s.validate = v
		}
	}
}

// WithBcryptCost lowers the hashing cost, mostly for tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		validate:   NewValidator(),
		now:        time.Now,
		logger:     slog.Default(),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// log prefers the request scoped logger carried by ctx.
func (s *Service) log(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// afterMutation snapshots the database. A failed snapshot is only logged.
func (s *Service) afterMutation(ctx context.Context, op string, ownerID int64) {
	if s.backups == nil {
		return
	}
	name, err := s.backups.Snapshot(ctx)
	if err != nil {
		s.log(ctx).WarnContext(ctx, "backup failed", "op", op, "owner_id", ownerID, "error", err)
		return
	}
	s.log(ctx).DebugContext(ctx, "backup written", "op", op, "name", name)
}

// storeErr translates repository errors into the apperror taxonomy.
func (s *Service) storeErr(ctx context.Context, op, what string, err error) error {
	var ae *apperror.Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(what + " not found")
	case errors.Is(err, repository.ErrConflict):
		return apperror.Conflict(what+" already exists", err)
	default:
		s.log(ctx).ErrorContext(ctx, "store failure", "op", op, "error", err)
		return apperror.Store(err)
	}
}
