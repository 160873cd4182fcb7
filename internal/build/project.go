// Package build is a small host build model: projects own targets,
// dependency configurations, tasks and plugins. Targets are processed by
// tasks that run concurrently when they do not depend on each other.
package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/dominikbraun/graph"
	"golang.org/x/sync/errgroup"

	"github.com/Alia5/pageproc/internal/processing"
)

// Block holds the project-wide settings of the pageproc plugin.
type Block struct {
	// PagesPackage is the package token pages resolve against ("." expands to the group).
	PagesPackage string
	// APIPackage is the package token API handlers resolve against.
	APIPackage string
	// ProcessorDependency is the coordinate of the processor to run.
	ProcessorDependency string
}

// Project is the unit of configuration and execution.
type Project struct {
	Name  string
	Group string
	Dir   string

	// BuildDir defaults to <Dir>/.pageproc.
	BuildDir string
	// KeepGoing runs independent tasks to completion after a failure.
	KeepGoing bool

	Block     Block
	Artifacts processing.ArtifactLogger
	Logger    *slog.Logger

	configurations *ConfigurationContainer
	tasks          *TaskContainer
	plugins        *PluginManager

	mu           sync.Mutex
	targets      []*Target
	processorExt *ProcessorExtension
}

// NewProject returns an empty project rooted at dir.
func NewProject(name, group, dir string, logger *slog.Logger) *Project {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Project{
		Name:           name,
		Group:          group,
		Dir:            dir,
		BuildDir:       filepath.Join(dir, ".pageproc"),
		Logger:         logger,
		configurations: newConfigurationContainer(),
		tasks:          newTaskContainer(),
	}
	p.plugins = &PluginManager{project: p, applied: make(map[string]bool)}
	return p
}

func (p *Project) Configurations() *ConfigurationContainer { return p.configurations }
func (p *Project) Tasks() *TaskContainer                   { return p.tasks }
func (p *Project) Plugins() *PluginManager                 { return p.plugins }

// ProcessorExtension returns the extension installed by ProcessorPlugin.
func (p *Project) ProcessorExtension() (*ProcessorExtension, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.processorExt == nil {
		return nil, ErrPluginNotApplied
	}
	return p.processorExt, nil
}

// Targets returns the targets in the order they were added.
func (p *Project) Targets() []*Target {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Target(nil), p.targets...)
}

// AddTarget registers a target with its dependency configuration, process
// task and process-resources task.
func (p *Project) AddTarget(t *Target) error {
	p.mu.Lock()
	for _, existing := range p.targets {
		if existing.Name == t.Name {
			p.mu.Unlock()
			return fmt.Errorf("target %q already exists", t.Name)
		}
	}
	p.targets = append(p.targets, t)
	p.mu.Unlock()

	if _, err := p.configurations.Create(t.DependencyConfigurationName()); err != nil {
		return err
	}

	targetDir := filepath.Join(p.BuildDir, t.Name)
	process := &ProcessTask{project: p, target: t, OutputDir: filepath.Join(targetDir, "generated")}
	if err := p.tasks.Register(process); err != nil {
		return err
	}
	resources := &ProcessResourcesTask{target: t, DestinationDir: filepath.Join(targetDir, "resources")}
	resources.DependsOn(process.Name())
	return p.tasks.Register(resources)
}

// taskRun tracks one scheduled task.
type taskRun struct {
	task Task
	done chan struct{}
	err  error
	// failed is set when the task itself ran and returned an error.
	failed bool
}

// errSkipped marks tasks that did not run because a dependency failed.
var errSkipped = errors.New("skipped")

// Execute runs the named tasks and everything they depend on. Tasks start as
// soon as their dependencies complete.
//
// Without KeepGoing the first task failure cancels the rest and is returned.
// With KeepGoing every independent task runs and all failures are joined.
func (p *Project) Execute(ctx context.Context, names ...string) error {
	order, err := p.plan(names)
	if err != nil {
		return err
	}

	runs := make(map[string]*taskRun, len(order))
	for _, name := range order {
		t, _ := p.tasks.Named(name)
		runs[name] = &taskRun{task: t, done: make(chan struct{})}
	}

	var (
		eg     *errgroup.Group
		runCtx = ctx
	)
	if p.KeepGoing {
		eg = &errgroup.Group{}
	} else {
		eg, runCtx = errgroup.WithContext(ctx)
	}

	for _, name := range order {
		run := runs[name]
		eg.Go(func() error {
			defer close(run.done)
			for _, dep := range run.task.Dependencies() {
				d := runs[dep]
				select {
				case <-d.done:
				case <-runCtx.Done():
					run.err = runCtx.Err()
					return run.err
				}
				if d.err != nil {
					run.err = fmt.Errorf("task %s %w: dependency %s failed", run.task.Name(), errSkipped, dep)
					return run.err
				}
			}
			if err := runCtx.Err(); err != nil {
				run.err = err
				return err
			}
			p.Logger.Debug("Running task", "task", run.task.Name())
			if err := run.task.Run(runCtx, p.Logger); err != nil {
				run.err = fmt.Errorf("task %s: %w", run.task.Name(), err)
				run.failed = true
				return run.err
			}
			return nil
		})
	}

	firstErr := eg.Wait()
	if !p.KeepGoing {
		for _, name := range order {
			if r := runs[name]; r.failed {
				return r.err
			}
		}
		return firstErr
	}
	var errs []error
	for _, name := range order {
		if err := runs[name].err; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// plan returns the requested tasks and their dependencies, dependencies first.
func (p *Project) plan(names []string) ([]string, error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for _, name := range p.tasks.Names() {
		if err := g.AddVertex(name); err != nil {
			return nil, err
		}
	}
	for _, name := range p.tasks.Names() {
		t, _ := p.tasks.Named(name)
		for _, dep := range t.Dependencies() {
			if err := g.AddEdge(dep, name); err != nil {
				switch {
				case errors.Is(err, graph.ErrEdgeAlreadyExists):
					continue
				case errors.Is(err, graph.ErrVertexNotFound):
					return nil, fmt.Errorf("task %s depends on unknown task %s", name, dep)
				case errors.Is(err, graph.ErrEdgeCreatesCycle):
					return nil, fmt.Errorf("task %s depending on %s creates a cycle", name, dep)
				default:
					return nil, err
				}
			}
		}
	}

	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	needed := make(map[string]bool)
	var visit func(string)
	visit = func(n string) {
		if needed[n] {
			return
		}
		needed[n] = true
		for dep := range predecessors[n] {
			visit(dep)
		}
	}
	for _, n := range names {
		if _, ok := p.tasks.Named(n); !ok {
			return nil, fmt.Errorf("task %q not found", n)
		}
		visit(n)
	}

	sorted, err := graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, err
	}
	var order []string
	for _, n := range sorted {
		if needed[n] {
			order = append(order, n)
		}
	}
	return order, nil
}
