package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/dungeon-run-game/game/engine"
)

var (
	ErrDifficultyNotFound = fmt.Errorf("%w: difficulty not found", engine.ErrInvalidArgument)
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// DifficultyFile is the on-disk shape of one difficulty override. JSON files
// use the same keys.
type DifficultyFile struct {
	engine.DifficultyDefinition `yaml:",inline"`
	Rules                       []engine.FloorRoomRule `yaml:"rules,omitempty"`
}

// Manager serves the difficulty catalog: the built-in presets plus any
// overrides found in an optional directory.
type Manager struct {
	configDir string
	defs      map[string]engine.DifficultyDefinition
	rules     map[string][]engine.FloorRoomRule
	order     []string
	mu        sync.RWMutex
}

// NewManager creates a catalog manager. An empty configDir means built-in
// presets only.
func NewManager(configDir string) (*Manager, error) {
	if configDir != "" {
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("config directory does not exist: %s", configDir)
		}
	}

	m := &Manager{configDir: configDir}
	if err := m.RefreshCache(); err != nil {
		return nil, err
	}
	return m, nil
}

// Difficulty implements engine.Catalog.
func (m *Manager) Difficulty(key string) (engine.DifficultyDefinition, []engine.FloorRoomRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, ok := m.defs[key]
	if !ok {
		return engine.DifficultyDefinition{}, nil, fmt.Errorf("%w: %q", ErrDifficultyNotFound, key)
	}
	rules := append([]engine.FloorRoomRule(nil), m.rules[key]...)
	return def, rules, nil
}

// List returns every difficulty, built-in presets first in their display
// order, then overrides by key.
func (m *Manager) List() []engine.DifficultyDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.DifficultyDefinition, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.defs[key])
	}
	return out
}

// RefreshCache rebuilds the catalog from the presets and the config directory.
// On error the previous catalog stays in place.
func (m *Manager) RefreshCache() error {
	defs := engine.DefaultDifficulties()
	rules := make(map[string][]engine.FloorRoomRule)
	for _, key := range engine.DifficultyOrder {
		rules[key] = engine.RulesFor(engine.DefaultFloorRules(), key)
	}
	order := append([]string(nil), engine.DifficultyOrder...)

	if m.configDir != "" {
		files, err := DifficultyFiles(m.configDir)
		if err != nil {
			return err
		}

		var added []string
		for _, path := range files {
			file, err := LoadFile(path)
			if err != nil {
				return err
			}
			key := file.Key
			if _, exists := defs[key]; !exists {
				added = append(added, key)
			}
			defs[key] = file.DifficultyDefinition
			if len(file.Rules) > 0 {
				rules[key] = file.Rules
			} else if _, builtIn := rules[key]; !builtIn {
				rules[key] = nil
			}
		}
		sort.Strings(added)
		order = append(order, added...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defs = defs
	m.rules = rules
	m.order = order
	return nil
}

// DifficultyFiles lists the override files in a directory.
func DifficultyFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadFile parses and validates one override file. Rules without an explicit
// difficulty belong to the file's key.
func LoadFile(path string) (*DifficultyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file DifficultyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}
	if file.Key == "" {
		file.Key = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	for i := range file.Rules {
		if file.Rules[i].Difficulty == "" {
			file.Rules[i].Difficulty = file.Key
		}
	}

	if err := engine.ValidateDifficulty(file.DifficultyDefinition, file.Rules); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}
	return &file, nil
}

// SaveFile writes a difficulty override as YAML.
func SaveFile(path string, file *DifficultyFile) error {
	if err := engine.ValidateDifficulty(file.DifficultyDefinition, file.Rules); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
