package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/litetable/litetable-sink/internal/sink"
)

// Properties is the destination-scoped configuration store consumed by the
// routing resolver. Keys are looked up verbatim, e.g.
//
//	orders.rowkey.columns = id,region
//	orders.rowkey.delimiter = -
//	orders.column.family = cf1,cf2
//	orders.column.family.cf1.columns = id
//
// The store is loaded once and read-only afterward, so concurrent lookups
// need no locking.
type Properties struct {
	entries map[string]string
}

// Get returns the raw value for a key and whether the key is present.
func (p *Properties) Get(key string) (string, bool) {
	value, ok := p.entries[key]
	return value, ok
}

// LoadProperties reads the destination properties file from the sink
// directory.
func LoadProperties() (*Properties, error) {
	dir, err := sink.GetSinkDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get sink directory: %w", err)
	}

	return LoadPropertiesFile(filepath.Join(dir, propertiesFileName))
}

// LoadPropertiesFile reads a destination properties file from an explicit
// path.
func LoadPropertiesFile(path string) (*Properties, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open properties file: %w", err)
	}
	defer file.Close()

	props := &Properties{
		entries: make(map[string]string),
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		props.entries[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading properties file: %w", err)
	}

	return props, nil
}
