package config

import (
	"errors"
	"os"

	"github.com/titanous/json5"

	"MovieCatalog/internal/domain"
)

// LoadHeaders reads the request header file. JSON5 is accepted so the file can
// carry comments. Every failure is a *domain.ConfigError.
func LoadHeaders(path string) (map[string]string, error) {
	if path == "" {
		return nil, &domain.ConfigError{Path: path, Err: errors.New("no header file configured")}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}

	var headers map[string]string
	if err := json5.Unmarshal(raw, &headers); err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}
	if headers == nil {
		return nil, &domain.ConfigError{Path: path, Err: errors.New("header file must hold a JSON object")}
	}

	return headers, nil
}
