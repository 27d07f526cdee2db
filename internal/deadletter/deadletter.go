package deadletter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultDirectory = "deadletter"

	defaultRetention     = 24 * time.Hour
	defaultSweepInterval = 30 * time.Minute
)

// Entry is one record the pipeline could not deliver, kept on disk for
// operator inspection until the retention window passes.
type Entry struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination"`
	Payload     []byte    `json:"payload"`
	Reason      string    `json:"reason"`
	FailedAt    time.Time `json:"failedAt"`
}

// Store persists failed records as one file per record and prunes expired
// files on an interval.
type Store struct {
	dir           string
	retention     time.Duration
	sweepInterval time.Duration
	done          chan struct{}
}

type Config struct {
	// Path is the sink directory the dead-letter directory lives under.
	Path string
	// Retention is how long buried records are kept. Zero means the default.
	Retention time.Duration
	// SweepInterval is the prune cadence. Zero means the default.
	SweepInterval time.Duration
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Path == "" {
		errGrp = append(errGrp, errors.New("dead letter path cannot be empty"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dir := filepath.Join(cfg.Path, defaultDirectory)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create dead letter directory: %w", err)
	}

	retention := cfg.Retention
	if retention == 0 {
		retention = defaultRetention
	}
	sweepInterval := cfg.SweepInterval
	if sweepInterval == 0 {
		sweepInterval = defaultSweepInterval
	}

	return &Store{
		dir:           dir,
		retention:     retention,
		sweepInterval: sweepInterval,
		done:          make(chan struct{}),
	}, nil
}

// Bury persists a failed record with the reason it could not be delivered.
func (s *Store) Bury(destination string, payload []byte, cause error) error {
	entry := &Entry{
		ID:          uuid.NewString(),
		Destination: destination,
		Payload:     payload,
		Reason:      cause.Error(),
		FailedAt:    time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter entry: %w", err)
	}

	path := filepath.Join(s.dir, entry.ID+".json")
	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("failed to write dead letter entry: %w", err)
	}

	log.Warn().
		Str("destination", destination).
		Str("id", entry.ID).
		Msg("record sent to dead letter store: " + entry.Reason)

	return nil
}

func (s *Store) Start() error {
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()

	return nil
}

func (s *Store) Stop() error {
	close(s.done)
	return nil
}

func (s *Store) Name() string {
	return "Dead Letter Store"
}

// sweep removes buried records older than the retention window.
func (s *Store) sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Error().Err(err).Msg("failed to read dead letter directory")
		return
	}

	cutoff := time.Now().Add(-s.retention)
	var removed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			log.Error().Err(err).Msg("failed to remove expired dead letter entry")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Info().Msgf("dead letter sweep removed %d expired entries", removed)
	}
}
