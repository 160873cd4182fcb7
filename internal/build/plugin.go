package build

import (
	"errors"
	"fmt"
	"maps"
	"sync"
)

// ErrPluginNotApplied is returned when the processor extension is used
// before ProcessorPlugin has been applied to the project.
var ErrPluginNotApplied = errors.New("processor plugin has not been applied")

// ErrArgumentConflict is returned when a processor argument is set twice with
// different values for the same target.
var ErrArgumentConflict = errors.New("processor argument already set")

// Plugin configures a project when applied.
type Plugin interface {
	ID() string
	Apply(p *Project) error
}

// PluginManager applies each plugin at most once.
type PluginManager struct {
	project *Project

	mu      sync.Mutex
	applied map[string]bool
}

// Apply applies plugin unless a plugin with the same ID was already applied.
func (m *PluginManager) Apply(plugin Plugin) error {
	m.mu.Lock()
	if m.applied[plugin.ID()] {
		m.mu.Unlock()
		return nil
	}
	m.applied[plugin.ID()] = true
	m.mu.Unlock()

	if err := plugin.Apply(m.project); err != nil {
		return fmt.Errorf("apply plugin %s: %w", plugin.ID(), err)
	}
	return nil
}

// HasPlugin reports whether a plugin with id was applied.
func (m *PluginManager) HasPlugin(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applied[id]
}

// ProcessorPluginID identifies ProcessorPlugin.
const ProcessorPluginID = "pageproc.processor"

// ProcessorPlugin installs the ProcessorExtension.
type ProcessorPlugin struct{}

func (ProcessorPlugin) ID() string { return ProcessorPluginID }

func (ProcessorPlugin) Apply(p *Project) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processorExt = &ProcessorExtension{args: make(map[string]map[string]string)}
	return nil
}

// ProcessorExtension holds the processor arguments of every target.
type ProcessorExtension struct {
	mu   sync.Mutex
	args map[string]map[string]string // target -> key -> value
}

// Arg sets a processor argument for target. Each key may be set once per
// target; setting the same value again is a no-op.
func (e *ProcessorExtension) Arg(target, key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	args := e.args[target]
	if args == nil {
		args = make(map[string]string)
		e.args[target] = args
	}
	if prev, ok := args[key]; ok && prev != value {
		return fmt.Errorf("%w: %s=%q for target %s (was %q)", ErrArgumentConflict, key, value, target, prev)
	}
	args[key] = value
	return nil
}

// Args returns a copy of the arguments for target.
func (e *ProcessorExtension) Args(target string) map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.args[target])
}
