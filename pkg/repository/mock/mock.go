package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	Repo *Repo
}

func NewMocks() *Mocks {
	return &Mocks{Repo: NewRepo()}
}

// Repo is an in-memory, owner scoped implementation of every repository
// interface. The exported error fields inject failures.
type Repo struct {
	mu     sync.Mutex
	nextID int64

	owners map[int64]models.Owner
	apps   map[int64]models.Application
	certs  map[int64]models.Certification
	skills map[int64]models.Skill

	CreateOwnerErr       error
	CreateApplicationErr error
	UpdateApplicationErr error
	ListErr              error
	SkillErr             error
	// FailApplicationsAfter makes CreateApplication return CreateApplicationErr
	// once that many inserts succeeded. Zero fails immediately when the error is set.
	FailApplicationsAfter int

	appInserts int
}

var _ repository.OwnerRepo = (*Repo)(nil)
var _ repository.ApplicationRepo = (*Repo)(nil)
var _ repository.CertificationRepo = (*Repo)(nil)
var _ repository.SkillRepo = (*Repo)(nil)

func NewRepo() *Repo {
	return &Repo{
		owners: map[int64]models.Owner{},
		apps:   map[int64]models.Application{},
		certs:  map[int64]models.Certification{},
		skills: map[int64]models.Skill{},
	}
}

func (m *Repo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Repo) CreateOwner(ctx context.Context, o *models.Owner) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateOwnerErr != nil {
		return 0, m.CreateOwnerErr
	}
	for _, existing := range m.owners {
		if existing.Handle == o.Handle || existing.Contact == o.Contact {
			return 0, repository.ErrConflict
		}
	}
	o.ID = m.id()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	m.owners[o.ID] = *o
	return o.ID, nil
}

func (m *Repo) GetOwnerByID(ctx context.Context, id int64) (*models.Owner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.owners[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (m *Repo) GetOwnerByLogin(ctx context.Context, login string) (*models.Owner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.owners {
		if o.Handle == login || o.Contact == login {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *Repo) UpdateOwnerContact(ctx context.Context, id int64, contact string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.owners[id]
	if !ok {
		return repository.ErrNotFound
	}
	for oid, existing := range m.owners {
		if oid != id && existing.Contact == contact {
			return repository.ErrConflict
		}
	}
	o.Contact = contact
	m.owners[id] = o
	return nil
}

func (m *Repo) UpdateOwnerPassword(ctx context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.owners[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.PasswordHash = hash
	m.owners[id] = o
	return nil
}

func (m *Repo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.owners[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.LastLogin = &at
	m.owners[id] = o
	return nil
}

func (m *Repo) CreateApplication(ctx context.Context, a *models.Application) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateApplicationErr != nil && m.appInserts >= m.FailApplicationsAfter {
		return 0, m.CreateApplicationErr
	}
	m.appInserts++
	a.ID = m.id()
	if a.Status == "" {
		a.Status = models.StatusSubmitted
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	m.apps[a.ID] = cloneApplication(*a)
	return a.ID, nil
}

func (m *Repo) GetApplication(ctx context.Context, ownerID, id int64) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok || a.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	out := cloneApplication(a)
	return &out, nil
}

func (m *Repo) ListApplications(ctx context.Context, ownerID int64, status models.Status) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []models.Application{}
	for _, a := range m.apps {
		if a.OwnerID != ownerID || (status != "" && a.Status != status) {
			continue
		}
		out = append(out, cloneApplication(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Repo) UpdateApplicationFunc(ctx context.Context, ownerID, id int64, fn func(a *models.Application) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateApplicationErr != nil {
		return m.UpdateApplicationErr
	}
	a, ok := m.apps[id]
	if !ok || a.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	work := cloneApplication(a)
	if err := fn(&work); err != nil {
		return err
	}
	work.ID, work.OwnerID, work.CreatedAt = a.ID, a.OwnerID, a.CreatedAt
	m.apps[id] = cloneApplication(work)
	return nil
}

func (m *Repo) DeleteApplication(ctx context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok || a.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(m.apps, id)
	return nil
}

func (m *Repo) CountApplications(ctx context.Context, ownerID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.apps {
		if a.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *Repo) CreateCertification(ctx context.Context, c *models.Certification) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.certs[c.ID] = *c
	return c.ID, nil
}

func (m *Repo) ListCertifications(ctx context.Context, ownerID int64) ([]models.Certification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []models.Certification{}
	for _, c := range m.certs {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Repo) DeleteCertification(ctx context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.certs[id]
	if !ok || c.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(m.certs, id)
	return nil
}

func (m *Repo) CountCertifications(ctx context.Context, ownerID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.certs {
		if c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *Repo) CreateSkill(ctx context.Context, ownerID int64, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SkillErr != nil {
		return 0, m.SkillErr
	}
	if m.hasSkill(ownerID, name) {
		return 0, repository.ErrConflict
	}
	return m.addSkill(ownerID, name), nil
}

func (m *Repo) ListSkills(ctx context.Context, ownerID int64) ([]models.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []models.Skill{}
	for _, s := range m.skills {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Repo) DeleteSkill(ctx context.Context, ownerID int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.skills {
		if s.OwnerID == ownerID && s.Name == name {
			delete(m.skills, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *Repo) SeedSkills(ctx context.Context, ownerID int64, names []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SkillErr != nil {
		return 0, m.SkillErr
	}
	added := 0
	for _, name := range names {
		if !m.hasSkill(ownerID, name) {
			m.addSkill(ownerID, name)
			added++
		}
	}
	return added, nil
}

func (m *Repo) ResetSkills(ctx context.Context, ownerID int64, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SkillErr != nil {
		return m.SkillErr
	}
	for id, s := range m.skills {
		if s.OwnerID == ownerID {
			delete(m.skills, id)
		}
	}
	for _, name := range names {
		if !m.hasSkill(ownerID, name) {
			m.addSkill(ownerID, name)
		}
	}
	return nil
}

func (m *Repo) CountSkills(ctx context.Context, ownerID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.skills {
		if s.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *Repo) hasSkill(ownerID int64, name string) bool {
	for _, s := range m.skills {
		if s.OwnerID == ownerID && s.Name == name {
			return true
		}
	}
	return false
}

func (m *Repo) addSkill(ownerID int64, name string) int64 {
	id := m.id()
	m.skills[id] = models.Skill{ID: id, OwnerID: ownerID, Name: name, CreatedAt: time.Now().UTC()}
	return id
}

func cloneApplication(a models.Application) models.Application {
	a.Skills = append([]string{}, a.Skills...)
	a.FollowUps = append([]models.FollowUp{}, a.FollowUps...)
	return a
}
