package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	defaultJournalDirectory = "journal"
	defaultJournalFile      = "journal.log"
)

// Entry is one journaled ingest operation: the protocol operation plus the
// raw payload exactly as it arrived, so replay runs the original bytes back
// through the pipeline.
type Entry struct {
	Op        int       `json:"op"`
	Payload   []byte    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type Manager struct {
	mu   sync.Mutex
	file *os.File
	path string
}

type Config struct {
	// Path where the journal directory will be saved
	Path string
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Path == "" {
		errGrp = append(errGrp, errors.New("journal path cannot be empty"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	journalPath := filepath.Join(cfg.Path, defaultJournalDirectory, defaultJournalFile)
	if err := os.MkdirAll(filepath.Dir(journalPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	file, err := os.OpenFile(journalPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	return &Manager{
		file: file,
		path: journalPath,
	}, nil
}

// Append records an ingested operation before it is mapped and written, so a
// crash between accept and storage write loses no records. Replayed records
// may be delivered more than once; mutations overwrite deterministically so
// re-delivery is safe.
func (m *Manager) Append(e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	jsonData, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if _, err = m.file.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write to journal: %w", err)
	}

	return nil
}

// Close releases the journal file handle.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file.Close()
}
