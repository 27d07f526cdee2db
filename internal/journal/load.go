package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// Replay feeds every journaled entry to apply in append order. Malformed
// lines are skipped, not fatal; an apply error stops the replay so nothing is
// acknowledged past the failure.
func (m *Manager) Replay(apply func(e *Entry) error) error {
	file, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			// no journal exists yet, not an error
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			log.Warn().Err(err).Msg("skipping malformed journal entry")
			continue
		}

		if err := apply(&entry); err != nil {
			return fmt.Errorf("failed to replay journal entry: %w", err)
		}
	}

	return scanner.Err()
}

// Truncate discards the journal after a clean replay.
func (m *Manager) Truncate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate journal: %w", err)
	}
	if _, err := m.file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind journal: %w", err)
	}

	return nil
}
