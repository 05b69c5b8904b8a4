package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Azahorscak/dbmanager-tui/internal/schema"
)

// DefaultLimit is the page size used when no override applies.
const DefaultLimit = 50

// Target is one tenant/environment the console can manage.
type Target struct {
	Name string `yaml:"name"`
	// Limits overrides the page size per collection (plural name).
	Limits map[string]int `yaml:"limits,omitempty"`
}

// Console is the parsed console file.
type Console struct {
	Version      int                   `yaml:"version"`
	BaseURL      string                `yaml:"base_url"`
	DefaultLimit int                   `yaml:"default_limit,omitempty"`
	Targets      []Target              `yaml:"targets"`
	Entities     []schema.EntityConfig `yaml:"entities"`
	Schedule     schema.ScheduleConfig `yaml:"schedule,omitempty"`
}

// LoadConsole reads and validates the console file at path.
func LoadConsole(path string) (*Console, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading console file: %w", err)
	}
	return ParseConsole(b)
}

// ParseConsole parses and validates a console definition.
func ParseConsole(b []byte) (*Console, error) {
	var c Console
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parsing console file: %w", err)
	}
	if c.Version != 1 {
		return nil, fmt.Errorf("console: unsupported version %d", c.Version)
	}
	if len(c.Targets) == 0 {
		return nil, errors.New("console: no targets")
	}
	if len(c.Entities) == 0 {
		return nil, errors.New("console: no entities")
	}
	if c.DefaultLimit < 0 {
		return nil, fmt.Errorf("console: negative default_limit %d", c.DefaultLimit)
	}
	if c.DefaultLimit == 0 {
		c.DefaultLimit = DefaultLimit
	}

	seen := make(map[string]bool, len(c.Targets))
	for _, t := range c.Targets {
		if t.Name == "" {
			return nil, errors.New("console: target without name")
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("console: duplicate target %q", t.Name)
		}
		seen[t.Name] = true
		for coll, n := range t.Limits {
			if n <= 0 {
				return nil, fmt.Errorf("console: target %q: limit for %q must be positive", t.Name, coll)
			}
		}
	}
	return &c, nil
}

// Registry builds the validated entity registry declared by the console.
func (c *Console) Registry() (*schema.Registry, error) {
	reg, err := schema.NewRegistry(c.Entities, c.Schedule)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	return reg, nil
}

// TargetNames returns the configured target names in file order.
func (c *Console) TargetNames() []string {
	names := make([]string, len(c.Targets))
	for i, t := range c.Targets {
		names[i] = t.Name
	}
	return names
}

// HasTarget reports whether name is a configured target.
func (c *Console) HasTarget(name string) bool {
	for _, t := range c.Targets {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Limit returns the page size for a collection within a target.
func (c *Console) Limit(target, collection string) int {
	for _, t := range c.Targets {
		if t.Name == target {
			if n, ok := t.Limits[collection]; ok {
				return n
			}
			break
		}
	}
	if c.DefaultLimit > 0 {
		return c.DefaultLimit
	}
	return DefaultLimit
}
