// Package pagecache keeps content of pages waiting for rendering outside of
// the Go heap. Pages are serialized as binary Ion and kept in a SQLite
// database, either in memory or in a temporary file.
package pagecache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/amazon-ion/ion-go/ion"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"pageflow/area"
	"pageflow/misc"
)

const schema = `CREATE TABLE IF NOT EXISTS pages (key TEXT PRIMARY KEY, payload BLOB NOT NULL)`

// Store implements area.PageStore.
type Store struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	path string
	log  *zap.Logger

	saved, loaded int
}

// Open creates page store. When dir is empty database is kept in memory,
// otherwise new database file is created in dir and removed on Close.
func Open(dir string, log *zap.Logger) (*Store, error) {
	s := &Store{log: log.Named("pagecache")}

	var err error
	if len(dir) == 0 {
		s.conn, err = sqlite.OpenConn(":memory:", sqlite.OpenReadWrite, sqlite.OpenMemory)
	} else {
		var f *os.File
		if f, err = os.CreateTemp(dir, misc.GetAppName()+"-pages-*.sqlite"); err != nil {
			return nil, fmt.Errorf("unable to create page cache file: %w", err)
		}
		s.path = f.Name()
		f.Close()
		s.conn, err = sqlite.OpenConn(s.path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	}
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("unable to open page cache: %w", err)
	}

	if err := sqlitex.ExecuteTransient(s.conn, schema, nil); err != nil {
		err = multierr.Append(err, s.conn.Close())
		s.cleanup()
		return nil, fmt.Errorf("unable to prepare page cache: %w", err)
	}
	s.log.Debug("Page cache opened", zap.String("location", s.location()))
	return s, nil
}

func (s *Store) location() string {
	if len(s.path) == 0 {
		return ":memory:"
	}
	return s.path
}

func (s *Store) cleanup() {
	if len(s.path) == 0 {
		return
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("Unable to remove page cache file", zap.String("file", s.path), zap.Error(err))
	}
	for _, suffix := range []string{"-journal", "-wal", "-shm"} {
		os.Remove(s.path + suffix)
	}
}

// Save serializes page content under key replacing whatever was there.
func (s *Store) Save(key area.Key, p *area.Page) error {
	if p == nil {
		return fmt.Errorf("nothing to save for page %s", key)
	}
	data, err := ion.MarshalBinary(p)
	if err != nil {
		return fmt.Errorf("unable to serialize page %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = sqlitex.Execute(s.conn, `INSERT OR REPLACE INTO pages (key, payload) VALUES (?, ?)`,
		&sqlitex.ExecOptions{Args: []any{string(key), data}})
	if err != nil {
		return fmt.Errorf("unable to store page %s: %w", key, err)
	}
	s.saved++
	return nil
}

// Load restores page content stored under key.
func (s *Store) Load(key area.Key) (*area.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	found := false
	err := sqlitex.Execute(s.conn, `SELECT payload FROM pages WHERE key = ?`,
		&sqlitex.ExecOptions{
			Args: []any{string(key)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				b, err := io.ReadAll(stmt.ColumnReader(0))
				if err != nil {
					return err
				}
				data, found = b, true
				return nil
			}})
	if err != nil {
		return nil, fmt.Errorf("unable to read page %s: %w", key, err)
	}
	if !found {
		return nil, fmt.Errorf("page %s is not in cache", key)
	}

	p := &area.Page{}
	if err := ion.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("unable to deserialize page %s: %w", key, err)
	}
	s.loaded++
	return p, nil
}

// Remove drops page stored under key, missing key is not an error.
func (s *Store) Remove(key area.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := sqlitex.Execute(s.conn, `DELETE FROM pages WHERE key = ?`, &sqlitex.ExecOptions{Args: []any{string(key)}}); err != nil {
		return fmt.Errorf("unable to remove page %s: %w", key, err)
	}
	return nil
}

// Len returns number of pages currently in the store.
func (s *Store) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := sqlitex.Execute(s.conn, `SELECT count(*) FROM pages`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt(0)
			return nil
		}})
	if err != nil {
		return 0, fmt.Errorf("unable to count cached pages: %w", err)
	}
	return n, nil
}

// Path returns database file name, empty for in-memory store.
func (s *Store) Path() string {
	return s.path
}

// Close releases database, file backed store is deleted.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.cleanup()
	s.log.Debug("Page cache closed", zap.String("location", s.location()), zap.Int("saved", s.saved), zap.Int("loaded", s.loaded))
	if err != nil {
		return fmt.Errorf("unable to close page cache: %w", err)
	}
	return nil
}

// Dir returns directory for file backed cache. Relative directories are
// resolved against working directory, empty means system temporary directory.
func Dir(configured string) (string, error) {
	if len(configured) == 0 {
		return os.TempDir(), nil
	}
	dir, err := filepath.Abs(configured)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("unable to create page cache directory: %w", err)
	}
	return dir, nil
}
