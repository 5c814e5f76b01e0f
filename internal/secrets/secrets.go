// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API credentials for the model backends.
// A Store layers a directory of plain-text key files (one secret per file,
// filename is the key, trimmed contents are the value) over process
// environment variables, with file values taking precedence.
//
// Known key files: anthropic-api-key, embeddings-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store holds the secrets read from a directory at startup.
type Store struct {
	values map[string]string
}

// Load reads every regular file in dir into a Store. A missing directory is
// not an error and yields an empty Store. Dotfiles, subdirectories and empty
// files are skipped; an unreadable file produces a warning on stderr but does
// not abort the load.
func Load(dir string) (*Store, error) {
	s := &Store{values: make(map[string]string)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s.values[entry.Name()] = value
		}
	}

	return s, nil
}

// Get returns the secret for key, falling back to the environment variable
// envVar when no key file was loaded. Returns "" when neither is set.
func (s *Store) Get(key, envVar string) string {
	if s != nil {
		if v, ok := s.values[key]; ok {
			return v
		}
	}
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}

// Keys returns the names of the loaded key files in sorted order. Values are
// never exposed; this exists so the CLI can announce which credentials it
// found without printing them.
func (s *Store) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
