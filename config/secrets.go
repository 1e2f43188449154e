package config

import (
	"bufio"
	"os"
	"strings"
)

// LoadSecrets reads KEY=VALUE lines from path into the process environment.
// Blank lines and lines starting with # are skipped. Existing environment
// values take precedence over file values. A missing file is not an error.
func LoadSecrets(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" || os.Getenv(key) != "" {
			continue
		}
		os.Setenv(key, strings.TrimSpace(value))
	}
}
