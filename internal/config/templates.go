package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trade Journal Configuration

[database]
# Path to the SQLite journal database.
# Defaults to journal.db next to this file.
# path = "/path/to/journal.db"

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to the console (stderr)
console = true
# Log to a rotating file
file = true
# Maximum log file size in megabytes before rotation
max_size = 50
# Number of rotated files to keep
max_backups = 5
# Days to keep rotated files
max_age = 30

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "2006-01-02"
# Time format
time_format = "15:04"

[import]
# Abort a broker import on the first malformed row instead of skipping it
strict = false
# Ideal risk amount assigned to imported trades
default_ideal_risk = 100.0
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
