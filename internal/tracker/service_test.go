package tracker_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dbfs "github.com/garnizeh/candidatures/db"
	"github.com/garnizeh/candidatures/internal/backup"
	dbpkg "github.com/garnizeh/candidatures/internal/db"
	"github.com/garnizeh/candidatures/internal/models"
	sqlite "github.com/garnizeh/candidatures/internal/repository/sqlite"
	"github.com/garnizeh/candidatures/internal/tracker"
	"github.com/garnizeh/candidatures/internal/transfer"
	"github.com/garnizeh/candidatures/pkg/apperror"
	"github.com/garnizeh/candidatures/pkg/repository/mock"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
}

// Now advances one second per call.
func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fakeSnapshotter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSnapshotter) Snapshot(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return "backup_test.db", f.err
}

func (f *fakeSnapshotter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixture struct {
	svc    *tracker.Service
	snaps  *fakeSnapshotter
	clock  *clock
	dbPath string
	logs   *bytes.Buffer
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func openStore(t *testing.T) (*sqlite.SQLiteRepo, string) {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tracker.db")
	d, err := dbpkg.New(ctx, path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, dbpkg.Migrate(ctx, d, dbfs.Migrations))
	return sqlite.New(d, nil), path
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, path := openStore(t)
	f := &fixture{snaps: &fakeSnapshotter{}, clock: newClock(), dbPath: path, logs: &bytes.Buffer{}}
	f.svc = tracker.New(store,
		tracker.WithBackups(f.snaps),
		tracker.WithClock(f.clock.Now),
		tracker.WithLogger(quietLogger(f.logs)),
		tracker.WithBcryptCost(bcrypt.MinCost),
	)
	return f
}

func (f *fixture) owner(t *testing.T, handle string) int64 {
	t.Helper()
	o, err := f.svc.Register(context.Background(), tracker.RegisterRequest{
		Handle: handle, Contact: handle + "@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	return o.ID
}

func (f *fixture) create(t *testing.T, ownerID int64, req tracker.CreateApplicationRequest) *models.Application {
	t.Helper()
	a, err := f.svc.CreateApplication(context.Background(), ownerID, req)
	require.NoError(t, err)
	return a
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), "error: %v", err)
}

func TestCreateApplication_Defaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")

	a := f.create(t, owner, tracker.CreateApplicationRequest{
		Company: "  Acme ", Position: "SRE", Skills: []string{"linux", " linux", ""},
	})
	assert.Equal(t, models.StatusSubmitted, a.Status)
	assert.Equal(t, "Acme", a.Company)
	assert.Equal(t, []string{"linux"}, a.Skills)
	assert.Empty(t, a.FollowUps)
	assert.NotZero(t, a.ID)
	assert.Equal(t, 1, f.snaps.Calls(), "create triggers one backup")

	got, err := f.svc.GetApplication(ctx, owner, a.ID)
	require.NoError(t, err)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))

	legacy := f.create(t, owner, tracker.CreateApplicationRequest{Company: "B", Position: "P", Status: "entretien"})
	assert.Equal(t, models.StatusInterview, legacy.Status)
}

func TestCreateApplication_Validation(t *testing.T) {
	f := newFixture(t)
	owner := f.owner(t, "alice")

	cases := map[string]tracker.CreateApplicationRequest{
		"missing company": {Position: "SRE"},
		"blank position":  {Company: "Acme", Position: "   "},
		"bad status":      {Company: "Acme", Position: "SRE", Status: "ghosted"},
		"bad date":        {Company: "Acme", Position: "SRE", SubmittedDate: "10/01/2025"},
		"bad email":       {Company: "Acme", Position: "SRE", ContactEmail: "nope"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateApplication(context.Background(), owner, req)
			assertKind(t, err, apperror.KindValidation)
		})
	}
	assert.Equal(t, 0, f.snaps.Calls(), "rejected input never reaches the store")
}

func TestOwnerIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.owner(t, "alice")
	bob := f.owner(t, "bob")

	a := f.create(t, alice, tracker.CreateApplicationRequest{Company: "Acme", Position: "SRE", Notes: "secret"})

	_, err := f.svc.GetApplication(ctx, bob, a.ID)
	assertKind(t, err, apperror.KindNotFound)

	_, err = f.svc.UpdateApplication(ctx, bob, a.ID, tracker.UpdateApplicationRequest{Company: "X", Position: "Y", Status: models.StatusAccepted})
	assertKind(t, err, apperror.KindNotFound)

	assertKind(t, f.svc.DeleteApplication(ctx, bob, a.ID), apperror.KindNotFound)

	got, err := f.svc.RecordFollowUp(ctx, bob, a.ID, tracker.FollowUpRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Nil(t, got)

	found, err := f.svc.Search(ctx, bob, "acme", "")
	require.NoError(t, err)
	assert.Empty(t, found)

	list, err := f.svc.ListApplications(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	mine, err := f.svc.GetApplication(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", mine.Company)
	assert.Equal(t, models.StatusSubmitted, mine.Status)
	assert.Empty(t, mine.FollowUps)
}

func TestNotFoundMessageDoesNotLeakOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.owner(t, "alice")
	bob := f.owner(t, "bob")
	a := f.create(t, alice, tracker.CreateApplicationRequest{Company: "Acme", Position: "SRE"})

	_, foreign := f.svc.GetApplication(ctx, bob, a.ID)
	_, missing := f.svc.GetApplication(ctx, bob, a.ID+1000)
	assert.Equal(t, apperror.Message(missing), apperror.Message(foreign))
	assert.Equal(t, apperror.HTTPStatus(missing), apperror.HTTPStatus(foreign))
}

func TestRecordFollowUp_AcmeScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")

	a := f.create(t, owner, tracker.CreateApplicationRequest{Company: "Acme", Position: "SRE", Status: models.StatusSubmitted})

	when := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	f.clock.Set(when.Add(-time.Second))
	_, err := f.svc.RecordFollowUp(ctx, owner, a.ID, tracker.FollowUpRequest{Message: "pinged recruiter"})
	require.NoError(t, err)

	got, err := f.svc.GetApplication(ctx, owner, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFollowedUp, got.Status)
	require.Len(t, got.FollowUps, 1)
	assert.Equal(t, "pinged recruiter", got.FollowUps[0].Message)
	assert.True(t, got.FollowUps[0].Timestamp.Equal(when), "timestamp %v", got.FollowUps[0].Timestamp)
}

func TestRecordFollowUp_FromEveryStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")

	for _, st := range models.Statuses {
		t.Run(string(st), func(t *testing.T) {
			a := f.create(t, owner, tracker.CreateApplicationRequest{Company: "C", Position: "P", Status: st})
			for i := 0; i < 3; i++ {
				got, err := f.svc.RecordFollowUp(ctx, owner, a.ID, tracker.FollowUpRequest{Message: "again"})
				require.NoError(t, err)
				assert.Equal(t, models.StatusFollowedUp, got.Status)
				require.Len(t, got.FollowUps, i+1)
			}
			got, err := f.svc.GetApplication(ctx, owner, a.ID)
			require.NoError(t, err)
			assert.True(t, sort.SliceIsSorted(got.FollowUps, func(i, j int) bool {
				return got.FollowUps[i].Timestamp.Before(got.FollowUps[j].Timestamp)
			}))
		})
	}
}

func TestRecordFollowUp_TerminalStatusIsForcedBackToFollowedUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")

	for _, st := range []models.Status{models.StatusInterview, models.StatusRejected, models.StatusAccepted} {
		a := f.create(t, owner, tracker.CreateApplicationRequest{Company: "C", Position: "P", Status: st})
		got, err := f.svc.RecordFollowUp(ctx, owner, a.ID, tracker.FollowUpRequest{Message: "thanks"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusFollowedUp, got.Status, "from %s", st)
	}
}

func TestRecordFollowUp_TimestampNeverGoesBackwards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")
	a := f.create(t, owner, tracker.CreateApplicationRequest{Company: "C", Position: "P"})

	later := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.svc.UpdateApplication(ctx, owner, a.ID, tracker.UpdateApplicationRequest{
		Company: "C", Position: "P", Status: models.StatusSubmitted,
		FollowUps: []models.FollowUp{{Timestamp: later, Message: "scheduled"}},
	})
	require.NoError(t, err)

	got, err := f.svc.RecordFollowUp(ctx, owner, a.ID, tracker.FollowUpRequest{Message: "now"})
	require.NoError(t, err)
	require.Len(t, got.FollowUps, 2)
	assert.False(t, got.FollowUps[1].Timestamp.Before(got.FollowUps[0].Timestamp))
}

func TestRecordFollowUp_UnknownIDSilentlySucceeds(t *testing.T) {
	f := newFixture(t)
	owner := f.owner(t, "alice")

	got, err := f.svc.RecordFollowUp(context.Background(), owner, 424242, tracker.FollowUpRequest{Message: "hello?"})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, f.snaps.Calls(), "nothing changed so nothing is backed up")
}

func TestUpdateApplication_FullReplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")
	a := f.create(t, owner, tracker.CreateApplicationRequest{
		Company: "Acme", Position: "SRE", Notes: "old", PostingLink: "https://acme.test/job",
	})
	_, err := f.svc.RecordFollowUp(ctx, owner, a.ID, tracker.FollowUpRequest{Message: "first"})
	require.NoError(t, err)

	got, err := f.svc.UpdateApplication(ctx, owner, a.ID, tracker.UpdateApplicationRequest{
		Company: "Acme Corp", Position: "Senior SRE", Status: models.StatusInterview,
		SubmittedDate: "2025-04-01", Skills: []string{"go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Company)
	assert.Equal(t, models.StatusInterview, got.Status)
	assert.Nil(t, got.Notes, "omitted fields are cleared")
	assert.Nil(t, got.PostingLink)
	assert.Len(t, got.FollowUps, 1, "nil follow_ups keeps history")

	got, err = f.svc.UpdateApplication(ctx, owner, a.ID, tracker.UpdateApplicationRequest{
		Company: "Acme Corp", Position: "Senior SRE", Status: models.StatusInterview,
		FollowUps: []models.FollowUp{},
	})
	require.NoError(t, err)
	assert.Empty(t, got.FollowUps, "an explicit empty list replaces history")

	t0 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err = f.svc.UpdateApplication(ctx, owner, a.ID, tracker.UpdateApplicationRequest{
		Company: "Acme Corp", Position: "Senior SRE", Status: models.StatusInterview,
		FollowUps: []models.FollowUp{{Timestamp: t0}, {Timestamp: t0.Add(-time.Hour)}},
	})
	assertKind(t, err, apperror.KindValidation)

	_, err = f.svc.UpdateApplication(ctx, owner, a.ID, tracker.UpdateApplicationRequest{Company: "Acme", Position: "SRE"})
	assertKind(t, err, apperror.KindValidation)
}

func TestDeleteApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")
	a := f.create(t, owner, tracker.CreateApplicationRequest{Company: "Acme", Position: "SRE"})

	require.NoError(t, f.svc.DeleteApplication(ctx, owner, a.ID))
	assert.Equal(t, 2, f.snaps.Calls())

	_, err := f.svc.GetApplication(ctx, owner, a.ID)
	assertKind(t, err, apperror.KindNotFound)
	assertKind(t, f.svc.DeleteApplication(ctx, owner, a.ID), apperror.KindNotFound)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")

	f.create(t, owner, tracker.CreateApplicationRequest{Company: "Acme", Position: "SRE"})
	f.create(t, owner, tracker.CreateApplicationRequest{Company: "Globex", Position: "Ingénieur Réseau", Status: models.StatusInterview})
	f.create(t, owner, tracker.CreateApplicationRequest{Company: "Initech", Position: "Dev", Notes: "Referred by ACME alumni", Status: models.StatusInterview})

	none, err := f.svc.Search(ctx, owner, "", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none, "no filter means no results")

	byText, err := f.svc.Search(ctx, owner, "acme", "")
	require.NoError(t, err)
	assert.Len(t, byText, 2)

	accents, err := f.svc.Search(ctx, owner, "INGÉNIEUR", "")
	require.NoError(t, err)
	require.Len(t, accents, 1)
	assert.Equal(t, "Globex", accents[0].Company)

	both, err := f.svc.Search(ctx, owner, "acme", "interview")
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "Initech", both[0].Company)

	byStatus, err := f.svc.Search(ctx, owner, "", "interview")
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	unknown, err := f.svc.Search(ctx, owner, "", "ghosted")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestSkills_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")

	_, err := f.svc.AddSkill(ctx, owner, tracker.CreateSkillRequest{Name: "rust-systems"})
	require.NoError(t, err)
	_, err = f.svc.AddSkill(ctx, owner, tracker.CreateSkillRequest{Name: "rust-systems"})
	assertKind(t, err, apperror.KindConflict)

	skills, err := f.svc.ListSkills(ctx, owner)
	require.NoError(t, err)
	n := 0
	for _, s := range skills {
		if s.Name == "rust-systems" {
			n++
		}
	}
	assert.Equal(t, 1, n)

	_, err = f.svc.AddSkill(ctx, owner, tracker.CreateSkillRequest{Name: "  "})
	assertKind(t, err, apperror.KindValidation)
}

func TestSkills_ResetScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")

	_, err := f.svc.AddSkill(ctx, owner, tracker.CreateSkillRequest{Name: "rust-systems"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteSkill(ctx, owner, "docker"))

	require.NoError(t, f.svc.ResetSkills(ctx, owner))

	skills, err := f.svc.ListSkills(ctx, owner)
	require.NoError(t, err)
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	want := append([]string{}, models.DefaultSkillCatalog...)
	sort.Strings(want)
	assert.Equal(t, want, names)

	assertKind(t, f.svc.DeleteSkill(ctx, owner, "rust-systems"), apperror.KindNotFound)
}

func TestCertifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.owner(t, "alice")
	bob := f.owner(t, "bob")

	c, err := f.svc.CreateCertification(ctx, alice, tracker.CreateCertificationRequest{Name: "CKA", ObtainedOn: "2024-05-01"})
	require.NoError(t, err)
	assert.Nil(t, c.ExpiresOn)

	_, err = f.svc.CreateCertification(ctx, alice, tracker.CreateCertificationRequest{Name: "OSCP", ExpiresOn: "soon"})
	assertKind(t, err, apperror.KindValidation)

	assertKind(t, f.svc.DeleteCertification(ctx, bob, c.ID), apperror.KindNotFound)
	require.NoError(t, f.svc.DeleteCertification(ctx, alice, c.ID))

	certs, err := f.svc.ListCertifications(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, certs)
}

func TestStatsScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")

	for _, st := range []models.Status{models.StatusSubmitted, models.StatusFollowedUp, models.StatusInterview, models.StatusRejected} {
		f.create(t, owner, tracker.CreateApplicationRequest{Company: "C", Position: "P", Status: st})
	}

	s, err := f.svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 50, s.ResponseRate)

	adv, err := f.svc.AdvancedStats(ctx, owner)
	require.NoError(t, err)
	require.Len(t, adv.TopCompanies, 1)
	assert.Equal(t, 4, adv.TopCompanies[0].Count)
}

func TestBackupFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	f.snaps.err = errors.New("disk full")
	owner := f.owner(t, "alice")

	a, err := f.svc.CreateApplication(context.Background(), owner, tracker.CreateApplicationRequest{Company: "Acme", Position: "SRE"})
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.Contains(t, f.logs.String(), "backup failed")
	assert.Contains(t, f.logs.String(), "disk full")
}

func TestBackups_RetentionFollowsMutations(t *testing.T) {
	store, path := openStore(t)
	clk := newClock()
	dir := filepath.Join(t.TempDir(), "backups")
	mgr := backup.New(path, dir, backup.WithClock(clk.Now))
	svc := tracker.New(store,
		tracker.WithBackups(mgr),
		tracker.WithClock(clk.Now),
		tracker.WithLogger(quietLogger(&bytes.Buffer{})),
		tracker.WithBcryptCost(bcrypt.MinCost),
	)
	ctx := context.Background()

	o, err := svc.Register(ctx, tracker.RegisterRequest{Handle: "alice", Contact: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	var last time.Time
	for i := 0; i < 12; i++ {
		_, err := svc.CreateApplication(ctx, o.ID, tracker.CreateApplicationRequest{Company: "C", Position: "P"})
		require.NoError(t, err)
		last = clk.t
	}

	list, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(list), backup.DefaultRetention)
	require.NotEmpty(t, list)
	assert.Equal(t, backup.Name(last), list[0].Name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, backup.DefaultRetention)
}

func TestImportExportRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.owner(t, "alice")
	bob := f.owner(t, "bob")

	a := f.create(t, alice, tracker.CreateApplicationRequest{
		Company: "Acme", Position: "SRE", SubmittedDate: "2025-01-10",
		PostingLink: "https://acme.test/sre", ContactEmail: "hr@acme.test", ContactPhone: "+33102030405",
		Skills: []string{"linux", "bash"}, Notes: "remote",
	})
	_, err := f.svc.RecordFollowUp(ctx, alice, a.ID, tracker.FollowUpRequest{Message: "one"})
	require.NoError(t, err)
	_, err = f.svc.RecordFollowUp(ctx, alice, a.ID, tracker.FollowUpRequest{Message: "two"})
	require.NoError(t, err)
	_, err = f.svc.CreateCertification(ctx, alice, tracker.CreateCertificationRequest{Name: "CKA"})
	require.NoError(t, err)

	doc, err := f.svc.Export(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, transfer.Version, doc.Version)
	assert.Len(t, doc.Certifications, 1)
	assert.Len(t, doc.Skills, len(models.DefaultSkillCatalog))

	var buf bytes.Buffer
	require.NoError(t, transfer.WriteJSON(&buf, doc))
	src, err := transfer.NewJSONSource(ctx, buf.Bytes())
	require.NoError(t, err)

	res, err := f.svc.Import(ctx, bob, src)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	orig, err := f.svc.GetApplication(ctx, alice, a.ID)
	require.NoError(t, err)
	imported, err := f.svc.ListApplications(ctx, bob)
	require.NoError(t, err)
	require.Len(t, imported, 1)
	got := imported[0]

	assert.NotEqual(t, orig.ID, got.ID)
	assert.Equal(t, bob, got.OwnerID)
	assert.True(t, got.CreatedAt.After(orig.CreatedAt))
	assert.Equal(t, orig.Company, got.Company)
	assert.Equal(t, orig.Position, got.Position)
	assert.Equal(t, orig.Status, got.Status)
	assert.Equal(t, orig.SubmittedDate, got.SubmittedDate)
	assert.Equal(t, orig.PostingLink, got.PostingLink)
	assert.Equal(t, orig.ContactEmail, got.ContactEmail)
	assert.Equal(t, orig.ContactPhone, got.ContactPhone)
	assert.Equal(t, orig.Skills, got.Skills)
	assert.Equal(t, orig.Notes, got.Notes)
	require.Len(t, got.FollowUps, 2)
	for i := range orig.FollowUps {
		assert.True(t, orig.FollowUps[i].Timestamp.Equal(got.FollowUps[i].Timestamp))
		assert.Equal(t, orig.FollowUps[i].Message, got.FollowUps[i].Message)
	}
}

func TestImport_CSVStopsAtFirstBadRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "alice")

	csv := "Company,Position,Status,ContactEmail\n" +
		"Acme,SRE,interview,\n" +
		"Globex,Ops,,hr@globex.test\n" +
		"Broken,,submitted,\n" +
		"Never,Reached,,\n"
	src, err := transfer.NewCSVSource(strings.NewReader(csv))
	require.NoError(t, err)

	before := f.snaps.Calls()
	res, err := f.svc.Import(ctx, owner, src)
	assertKind(t, err, apperror.KindValidation)
	assert.Contains(t, apperror.Message(err), "row 3")
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, before+1, f.snaps.Calls(), "partial imports are backed up")

	apps, err := f.svc.ListApplications(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, apps, 2)
}

func TestImport_StoreFailureKeepsEarlierRows(t *testing.T) {
	repo := mock.NewRepo()
	repo.CreateApplicationErr = errors.New("database is locked")
	repo.FailApplicationsAfter = 2
	snaps := &fakeSnapshotter{}
	svc := tracker.New(repo, tracker.WithBackups(snaps), tracker.WithLogger(quietLogger(&bytes.Buffer{})))

	data := `[{"company":"A","position":"P"},{"company":"B","position":"P"},{"company":"C","position":"P"},{"company":"D","position":"P"}]`
	src, err := transfer.NewJSONSource(context.Background(), []byte(data))
	require.NoError(t, err)

	res, err := svc.Import(context.Background(), 1, src)
	assertKind(t, err, apperror.KindStore)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 1, snaps.Calls())

	n, err := repo.CountApplications(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestImport_EmptySourceSkipsBackup(t *testing.T) {
	f := newFixture(t)
	owner := f.owner(t, "alice")
	src, err := transfer.NewJSONSource(context.Background(), []byte(`[]`))
	require.NoError(t, err)

	res, err := f.svc.Import(context.Background(), owner, src)
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.Equal(t, 0, f.snaps.Calls())
}

type failingSource struct{ n int }

func (s *failingSource) Next() (*models.Application, error) {
	if s.n == 0 {
		s.n++
		return &models.Application{Company: "A", Position: "P"}, nil
	}
	return nil, io.ErrUnexpectedEOF
}

func TestImport_SourceErrorStops(t *testing.T) {
	f := newFixture(t)
	owner := f.owner(t, "alice")

	res, err := f.svc.Import(context.Background(), owner, &failingSource{})
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 1, res.Count)

	apps, err := f.svc.ListApplications(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, models.StatusSubmitted, apps[0].Status)
}
