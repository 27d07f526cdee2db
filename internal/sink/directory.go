package sink

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	sinkDir = ".litetable-sink"
)

// GetSinkDir returns the path to the sink's working directory in the user's
// home directory. The journal and dead-letter store live under it.
func GetSinkDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, sinkDir), nil
}
