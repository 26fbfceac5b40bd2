package domains

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load builds a classifier from path, or the built-in tables when path is empty.
func Load(path string) (*Classifier, error) {
	if path == "" {
		return NewDefaultClassifier(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read domains file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&file); err != nil {
		return nil, fmt.Errorf("invalid domains file %s: %w", path, err)
	}

	slog.Info("Domain tables loaded", "file", path, "blocked", len(file.Blocked), "trusted", len(file.Trusted))

	return NewClassifier(file.Blocked, file.Trusted), nil
}

func validate(file *File) error {
	blocked := make(map[string]bool, len(file.Blocked))
	for i, host := range file.Blocked {
		host = strings.ToLower(strings.TrimSpace(host))
		if host == "" {
			return fmt.Errorf("blocked host at index %d is empty", i)
		}
		blocked[host] = true
	}

	for host, weight := range file.Trusted {
		if strings.TrimSpace(host) == "" {
			return fmt.Errorf("trusted host must not be empty")
		}
		if weight < 0 || weight > 10 {
			return fmt.Errorf("trust weight for %s must be within [0, 10], got %v", host, weight)
		}
		if blocked[strings.ToLower(host)] {
			return fmt.Errorf("host %s is both blocked and trusted", host)
		}
	}

	return nil
}
