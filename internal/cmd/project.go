package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Alia5/pageproc/internal/build"
	"github.com/Alia5/pageproc/internal/configpaths"
	"github.com/Alia5/pageproc/internal/project"
)

// ProjectFlags locate the project a command operates on.
type ProjectFlags struct {
	Dir     string `help:"Project directory" default:"." type:"existingdir" env:"PAGEPROC_PROJECT_DIR"`
	Project string `help:"Project file (defaults to pageproc.{yaml,yml,toml,json} in the project directory)" type:"path" env:"PAGEPROC_PROJECT_FILE"`
}

// load reads and configures the project.
func (f ProjectFlags) load(logger *slog.Logger) (*build.Project, error) {
	dir, err := filepath.Abs(f.Dir)
	if err != nil {
		return nil, err
	}
	file := f.Project
	if file == "" {
		if file, err = configpaths.ProjectFile(dir); err != nil {
			return nil, err
		}
	}
	pf, err := project.Load(file)
	if err != nil {
		return nil, err
	}
	p, err := project.Configure(pf, dir, logger)
	if err != nil {
		return nil, fmt.Errorf("configure project from %s: %w", file, err)
	}
	return p, nil
}

// selectTargets returns the targets named in names, or all targets when
// names is empty.
func selectTargets(p *build.Project, names []string) ([]*build.Target, error) {
	all := p.Targets()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]*build.Target, len(all))
	for _, t := range all {
		byName[t.Name] = t
	}
	out := make([]*build.Target, 0, len(names))
	for _, n := range names {
		t, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown target %q", n)
		}
		out = append(out, t)
	}
	return out, nil
}
