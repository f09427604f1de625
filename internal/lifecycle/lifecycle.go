// Package lifecycle owns the process-wide database handle. The database is
// opened and, when empty, populated from the source tree exactly once, no
// matter how many goroutines ask for it first. A failed initialization is
// not cached: the next caller retries from scratch.
package lifecycle

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"askpalestine/internal/db"
	"askpalestine/internal/embedding"
	"askpalestine/internal/loader"
	"askpalestine/internal/search"
	"askpalestine/internal/store"
)

// Manager lazily initializes the database and hands out accessors built on
// the shared handle. All methods are safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	dbPath    string
	sourceDir string
	photosDir string
	embedder  embedding.EmbeddingService

	database  *sql.DB
	store     *store.Store
	loadCount int
}

// NewManager creates a Manager. Nothing is opened until the first accessor
// call.
func NewManager(dbPath, sourceDir, photosDir string, embedder embedding.EmbeddingService) *Manager {
	return &Manager{
		dbPath:    dbPath,
		sourceDir: sourceDir,
		photosDir: photosDir,
		embedder:  embedder,
	}
}

// Store returns the corpus store, initializing the database on first use.
func (m *Manager) Store() (*store.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	return m.store, nil
}

// Searcher returns a similarity searcher over the initialized database.
func (m *Manager) Searcher() (*search.Searcher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	return search.NewSearcher(m.database, m.embedder), nil
}

// Reload rebuilds the database from the source tree unconditionally,
// initializing first if needed. Requests running against the old contents
// keep working; the rebuild happens in one transaction.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureInitialized(); err != nil {
		return err
	}

	l := loader.New(m.database, m.embedder, m.sourceDir, m.photosDir)
	if err := l.Load(); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	m.loadCount++
	return nil
}

// LoadCount reports how many corpus loads have run, including the one
// triggered by first-touch initialization.
func (m *Manager) LoadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCount
}

// Close releases the database handle. A later accessor call reinitializes.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.database == nil {
		return nil
	}
	err := m.database.Close()
	m.database = nil
	m.store = nil
	return err
}

// ensureInitialized opens the database and runs the first-touch load when
// the store is empty. Callers must hold m.mu. On any failure the handle is
// closed and state reset so the next caller retries.
func (m *Manager) ensureInitialized() error {
	if m.database != nil {
		return nil
	}

	database, err := db.InitDB(m.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	s := store.New(database)
	voices, err := s.CountVoices()
	if err != nil {
		database.Close()
		return fmt.Errorf("failed to inspect database: %w", err)
	}

	if voices == 0 {
		log.Printf("[Lifecycle] empty database, loading corpus")
		l := loader.New(database, m.embedder, m.sourceDir, m.photosDir)
		if err := l.Load(); err != nil {
			database.Close()
			return fmt.Errorf("initial corpus load failed: %w", err)
		}
		m.loadCount++
	} else {
		log.Printf("[Lifecycle] reusing existing database with %d voices", voices)
	}

	m.database = database
	m.store = s
	return nil
}
