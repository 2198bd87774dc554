// Package backup takes point-in-time copies of the SQLite database file and
// keeps a bounded number of them.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	prefix = "backup_"
	suffix = ".db"
	layout = "20060102_150405"

	DefaultRetention = 10
)

var ErrInvalidName = errors.New("invalid backup name")

// Info describes one snapshot on disk.
type Info struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

type Manager struct {
	dbPath    string
	dir       string
	retention int
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Manager)

// WithClock replaces the clock used to name snapshots.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithRetention(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retention = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func New(dbPath, dir string, opts ...Option) *Manager {
	m := &Manager{
		dbPath:    dbPath,
		dir:       dir,
		retention: DefaultRetention,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) Dir() string { return m.dir }

// Name returns the snapshot file name for t.
func Name(t time.Time) string {
	return prefix + t.Format(layout) + suffix
}

// Snapshot copies the database file into the backup directory and rotates old
// snapshots. It returns the new snapshot's file name.
func (m *Manager) Snapshot(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := Name(m.now())
	if err := copyFile(m.dbPath, filepath.Join(m.dir, name)); err != nil {
		return "", fmt.Errorf("snapshot %s: %w", name, err)
	}

	if err := m.rotate(); err != nil {
		return name, fmt.Errorf("rotate backups: %w", err)
	}

	m.logger.Debug("backup created", "name", name, "dir", m.dir)
	return name, nil
}

// List returns the snapshots newest first.
func (m *Manager) List(ctx context.Context) ([]Info, error) {
	names, err := m.names()
	if err != nil {
		return nil, err
	}

	out := make([]Info, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := os.Stat(filepath.Join(m.dir, names[i]))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		out = append(out, Info{Name: names[i], Size: st.Size(), ModTime: st.ModTime()})
	}
	return out, nil
}

// Restore copies the named snapshot over the database file. The database must
// not be open while restoring.
func (m *Manager) Restore(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validName(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	if err := copyFile(filepath.Join(m.dir, name), m.dbPath); err != nil {
		return fmt.Errorf("restore %s: %w", name, err)
	}
	m.logger.Info("backup restored", "name", name, "database", m.dbPath)
	return nil
}

func (m *Manager) rotate() error {
	names, err := m.names()
	if err != nil {
		return err
	}
	for len(names) > m.retention {
		err := os.Remove(filepath.Join(m.dir, names[0]))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		names = names[1:]
	}
	return nil
}

// names lists snapshot file names oldest first. The timestamp layout makes the
// lexical order chronological.
func (m *Manager) names() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && validName(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func validName(name string) bool {
	if filepath.Base(name) != name || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return false
	}
	_, err := time.Parse(layout, strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
	return err == nil
}

// copyFile writes src to a temp file next to dst and renames it into place.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-"+filepath.Base(dst)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}
