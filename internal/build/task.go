package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
)

// Task is a unit of work in the build.
type Task interface {
	Name() string
	// Dependencies lists the names of tasks that must complete first.
	Dependencies() []string
	Run(ctx context.Context, logger *slog.Logger) error
}

// TaskDeps holds explicit task dependencies and is embedded by tasks.
type TaskDeps struct {
	deps []string
}

// DependsOn adds task names this task depends on.
func (d *TaskDeps) DependsOn(names ...string) {
	for _, n := range names {
		if !slices.Contains(d.deps, n) {
			d.deps = append(d.deps, n)
		}
	}
}

func (d *TaskDeps) Dependencies() []string {
	return append([]string(nil), d.deps...)
}

// TaskContainer holds the tasks of a project.
type TaskContainer struct {
	c *container[Task]
}

func newTaskContainer() *TaskContainer {
	return &TaskContainer{c: newContainer("task", Task.Name)}
}

// Register adds a task. Actions registered with ConfigureEach run against it.
func (tc *TaskContainer) Register(t Task) error {
	return tc.c.add(t)
}

// Named returns the task called name.
func (tc *TaskContainer) Named(name string) (Task, bool) {
	return tc.c.get(name)
}

// Names lists task names, sorted.
func (tc *TaskContainer) Names() []string {
	return tc.c.names()
}

// Matching returns a live view of the tasks satisfying pred.
func (tc *TaskContainer) Matching(pred func(Task) bool) Matching[Task] {
	return Matching[Task]{c: tc.c, pred: pred}
}

// FileSet is a lazily evaluated set of files produced by tasks.
type FileSet struct {
	builtBy []string
	files   func() ([]string, error)
}

// NewFileSet returns a file set evaluated by files and produced by builtBy.
func NewFileSet(files func() ([]string, error), builtBy ...string) FileSet {
	return FileSet{builtBy: builtBy, files: files}
}

// BuiltBy lists the tasks producing the set.
func (fs FileSet) BuiltBy() []string {
	return append([]string(nil), fs.builtBy...)
}

// Files evaluates the set. The result is sorted.
func (fs FileSet) Files() ([]string, error) {
	if fs.files == nil {
		return nil, nil
	}
	files, err := fs.files()
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Matching keeps only the files whose base name is exactly one of names.
func (fs FileSet) Matching(names ...string) FileSet {
	return FileSet{
		builtBy: fs.builtBy,
		files: func() ([]string, error) {
			all, err := fs.Files()
			if err != nil {
				return nil, err
			}
			var out []string
			for _, f := range all {
				if slices.Contains(names, filepath.Base(f)) {
					out = append(out, f)
				}
			}
			return out, nil
		},
	}
}
