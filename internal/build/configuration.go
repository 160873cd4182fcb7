package build

import (
	"slices"
	"sync"
)

// Configuration is a named bucket of dependency coordinates.
type Configuration struct {
	name string

	mu           sync.Mutex
	dependencies []string
}

func (c *Configuration) Name() string { return c.name }

// Add records a dependency. Adding a coordinate twice is a no-op.
func (c *Configuration) Add(coordinate string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.dependencies, coordinate) {
		return
	}
	c.dependencies = append(c.dependencies, coordinate)
}

// Dependencies returns the recorded coordinates in insertion order.
func (c *Configuration) Dependencies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.dependencies...)
}

// ConfigurationContainer holds the dependency configurations of a project.
type ConfigurationContainer struct {
	c *container[*Configuration]
}

func newConfigurationContainer() *ConfigurationContainer {
	return &ConfigurationContainer{c: newContainer("configuration", (*Configuration).Name)}
}

// Create adds a new, empty configuration.
func (cc *ConfigurationContainer) Create(name string) (*Configuration, error) {
	cfg := &Configuration{name: name}
	if err := cc.c.add(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Named returns the configuration called name.
func (cc *ConfigurationContainer) Named(name string) (*Configuration, bool) {
	return cc.c.get(name)
}

// Names lists configuration names, sorted.
func (cc *ConfigurationContainer) Names() []string {
	return cc.c.names()
}

// Matching returns a live view of the configurations satisfying pred.
func (cc *ConfigurationContainer) Matching(pred func(*Configuration) bool) Matching[*Configuration] {
	return Matching[*Configuration]{c: cc.c, pred: pred}
}
