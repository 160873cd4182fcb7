package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Alia5/pageproc/internal/processing"
)

// ProcessTask runs annotation processing for one target.
type ProcessTask struct {
	TaskDeps

	project *Project
	target  *Target

	// OutputDir receives generated sources, resources and the index.
	OutputDir string
	MaxRounds int

	result *processing.Result
}

func (t *ProcessTask) Name() string    { return t.target.ProcessTaskName() }
func (t *ProcessTask) Target() *Target { return t.target }

// Project returns the project the task belongs to.
func (t *ProcessTask) Project() *Project { return t.project }

// Result returns the outcome of the last run, or nil.
func (t *ProcessTask) Result() *processing.Result { return t.result }

// Outputs is the set of files the task currently owns, read from its index.
func (t *ProcessTask) Outputs() FileSet {
	return NewFileSet(func() ([]string, error) {
		idx, err := processing.LoadIndex(filepath.Join(t.OutputDir, processing.IndexFileName))
		if err != nil {
			return nil, err
		}
		return idx.OutputFiles(), nil
	}, t.Name())
}

func (t *ProcessTask) Run(ctx context.Context, logger *slog.Logger) error {
	cfg, ok := t.project.Configurations().Named(t.target.DependencyConfigurationName())
	if !ok || len(cfg.Dependencies()) == 0 {
		logger.Debug("No processors configured, skipping", "target", t.target.Name)
		return nil
	}
	ext, err := t.project.ProcessorExtension()
	if err != nil {
		return err
	}

	session := &processing.Session{
		Roots:       t.target.Sources,
		OutputDir:   t.OutputDir,
		Coordinates: cfg.Dependencies(),
		Options:     ext.Args(t.target.Name),
		Logger:      logger.With("target", t.target.Name),
		Artifacts:   t.project.Artifacts,
		MaxRounds:   t.MaxRounds,
	}
	res, err := session.Run(ctx)
	if err != nil {
		return fmt.Errorf("process %s sources: %w", t.target.Name, err)
	}
	t.result = res
	if !res.UpToDate {
		logger.Info("Processed sources",
			"target", t.target.Name,
			"rounds", len(res.Rounds),
			"generated", len(res.Generated))
	}
	return nil
}

// ProcessResourcesTask assembles the packaged resources of a target.
type ProcessResourcesTask struct {
	TaskDeps

	target *Target

	DestinationDir string

	sources  []FileSet
	packaged []string
}

func (t *ProcessResourcesTask) Name() string    { return t.target.ProcessResourcesTaskName() }
func (t *ProcessResourcesTask) Target() *Target { return t.target }

// From adds files to the packaged set. Tasks building fs become dependencies.
func (t *ProcessResourcesTask) From(fs FileSet) {
	t.sources = append(t.sources, fs)
	t.DependsOn(fs.BuiltBy()...)
}

// Packaged lists the packaged files relative to DestinationDir, sorted.
func (t *ProcessResourcesTask) Packaged() []string {
	return append([]string(nil), t.packaged...)
}

func (t *ProcessResourcesTask) Run(ctx context.Context, logger *slog.Logger) error {
	if err := os.RemoveAll(t.DestinationDir); err != nil {
		return fmt.Errorf("clean %s: %w", t.DestinationDir, err)
	}
	if err := os.MkdirAll(t.DestinationDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", t.DestinationDir, err)
	}

	packaged := make(map[string]bool)
	for _, dir := range t.target.ResourceDirs {
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if p == dir && errors.Is(err, fs.ErrNotExist) {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			packaged[filepath.ToSlash(rel)] = true
			return copyFile(p, filepath.Join(t.DestinationDir, rel))
		})
		if err != nil {
			return fmt.Errorf("copy resources from %s: %w", dir, err)
		}
	}

	for _, set := range t.sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		files, err := set.Files()
		if err != nil {
			return err
		}
		for _, f := range files {
			name := filepath.Base(f)
			packaged[name] = true
			if err := copyFile(f, filepath.Join(t.DestinationDir, name)); err != nil {
				return fmt.Errorf("copy %s: %w", f, err)
			}
		}
	}

	t.packaged = t.packaged[:0]
	for p := range packaged {
		t.packaged = append(t.packaged, p)
	}
	sort.Strings(t.packaged)
	logger.Debug("Packaged resources", "target", t.target.Name, "files", len(t.packaged))
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
