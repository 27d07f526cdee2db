package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/litetable/litetable-sink/internal/sink"
)

const (
	configFileName     = "litetable-sink.conf"
	propertiesFileName = "destinations.conf"
)

type Config struct {
	ServerAddress string
	ServerPort    string

	LiteTableAddress string
	LiteTablePort    int

	EventsAddress string
	EventsPort    int

	// dead-letter retention and sweep cadence, both in minutes
	DeadLetterRetention int
	DeadLetterSweep     int

	Debug     bool
	EnableTLS bool
}

// NewConfig reads the sink configuration file from the sink directory.
func NewConfig() (*Config, error) {
	dir, err := sink.GetSinkDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get sink directory: %w", err)
	}

	configPath := filepath.Join(dir, configFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("litetable-sink is not installed or configuration file not found")
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := &Config{}
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}

		switch key {
		case "server_address":
			config.ServerAddress = value
		case "server_port":
			config.ServerPort = value
		case "litetable_address":
			config.LiteTableAddress = value
		case "litetable_port":
			config.LiteTablePort, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid litetable port value: %w", err)
			}
		case "events_address":
			config.EventsAddress = value
		case "events_port":
			config.EventsPort, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid events port value: %w", err)
			}
		case "dead_letter_retention":
			config.DeadLetterRetention, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid dead letter retention value: %w", err)
			}
		case "dead_letter_sweep":
			config.DeadLetterSweep, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid dead letter sweep value: %w", err)
			}
		case "debug":
			config.Debug = value == "true"
		case "enable_tls":
			config.EnableTLS = value == "true"
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return config, nil
}

// parseLine splits one "key = value" configuration line, skipping comments
// and blank lines.
func parseLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}

	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}
