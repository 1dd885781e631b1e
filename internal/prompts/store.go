// Package prompts loads the prompt templates used by the answer and summary services.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.PromptStore = (*Store)(nil)

//go:embed defaults.toml
var defaultsTOML []byte

// file is the on-disk layout of a prompt catalogue.
type file struct {
	Prompts map[string]string `toml:"prompts"`
}

// Store holds prompt templates keyed by name.
// Embedded defaults are always present; a user file may override any of them.
type Store struct {
	mu      sync.RWMutex
	prompts map[string]string
}

// NewStore returns a store with the embedded defaults only.
func NewStore() (*Store, error) {
	prompts, err := parse(defaultsTOML)
	if err != nil {
		return nil, fmt.Errorf("parse default prompts: %w", err)
	}
	return &Store{prompts: prompts}, nil
}

// Load returns a store with the defaults overridden by the TOML file at path.
// An empty path yields the defaults.
func Load(path string) (*Store, error) {
	s, err := NewStore()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	overrides, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	for name, tmpl := range overrides {
		s.Set(name, tmpl)
	}
	return s, nil
}

func parse(data []byte) (map[string]string, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	prompts := make(map[string]string, len(f.Prompts))
	for name, tmpl := range f.Prompts {
		prompts[name] = strings.TrimSpace(tmpl)
	}
	return prompts, nil
}

// Get returns the template registered under name.
func (s *Store) Get(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.prompts[name]
	if !ok || tmpl == "" {
		return "", fmt.Errorf("prompt %q not found", name)
	}
	return tmpl, nil
}

// Set registers or replaces a template.
func (s *Store) Set(name, tmpl string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[name] = strings.TrimSpace(tmpl)
}

// Render substitutes {key} placeholders in tmpl.
// Substitution is single-pass, so values containing braces are left untouched.
func Render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
