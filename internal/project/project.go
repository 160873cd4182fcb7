// Package project loads pageproc project files and turns them into a
// configured build.Project.
//
// A project file lives next to go.mod:
//
//	name: site
//	pagesPackage: ./web/pages
//	apiPackage: ./server/api
//	targets:
//	  - name: script
//	    platform: script
//	    sources:
//	      - dir: web
//	  - name: server
//	    platform: server
//	    sources:
//	      - dir: server
//
// The group defaults to the module path in go.mod, and a source root's
// import path defaults to <group>/<dir>.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	"golang.org/x/mod/modfile"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/pageproc/internal/build"
	"github.com/Alia5/pageproc/internal/build/procsetup"
	"github.com/Alia5/pageproc/internal/pagegen"
	"github.com/Alia5/pageproc/internal/processing"
)

// File is the decoded project file.
type File struct {
	Name         string   `json:"name" yaml:"name" toml:"name"`
	Group        string   `json:"group,omitempty" yaml:"group,omitempty" toml:"group,omitempty"`
	PagesPackage string   `json:"pagesPackage" yaml:"pagesPackage" toml:"pagesPackage"`
	APIPackage   string   `json:"apiPackage" yaml:"apiPackage" toml:"apiPackage"`
	Processor    string   `json:"processor,omitempty" yaml:"processor,omitempty" toml:"processor,omitempty"`
	BuildDir     string   `json:"buildDir,omitempty" yaml:"buildDir,omitempty" toml:"buildDir,omitempty"`
	Targets      []Target `json:"targets" yaml:"targets" toml:"targets"`
}

// Target is one target entry of the project file.
type Target struct {
	Name      string                  `json:"name" yaml:"name" toml:"name"`
	Platform  string                  `json:"platform" yaml:"platform" toml:"platform"`
	Mode      string                  `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
	Sources   []processing.SourceRoot `json:"sources" yaml:"sources" toml:"sources"`
	Resources []string                `json:"resources,omitempty" yaml:"resources,omitempty" toml:"resources,omitempty"`
}

// Default returns the project file written by "config init".
func Default() *File {
	return &File{
		Name:         "site",
		PagesPackage: "./web/pages",
		APIPackage:   "./server/api",
		Targets: []Target{
			{Name: "script", Platform: "script", Mode: "frontend", Sources: []processing.SourceRoot{{Dir: "web"}}, Resources: []string{"web/public"}},
			{Name: "server", Platform: "server", Sources: []processing.SourceRoot{{Dir: "server"}}},
		},
	}
}

// Load decodes a project file; the format follows the file extension.
func Load(p string) (*File, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}
	var f File
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".json":
		err = json.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported project file format: %s", p)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return &f, nil
}

// ModulePath reads the module path from dir/go.mod. It returns "" when dir
// has no go.mod.
func ModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return modfile.ModulePath(data), nil
}

// Configure builds a project rooted at dir from f and wires the processor
// into each target.
func Configure(f *File, dir string, logger *slog.Logger) (*build.Project, error) {
	group := f.Group
	if group == "" {
		mod, err := ModulePath(dir)
		if err != nil {
			return nil, fmt.Errorf("read go.mod: %w", err)
		}
		group = mod
	}
	if group == "" {
		return nil, errors.New("project group is not set and no go.mod module path was found")
	}

	p := build.NewProject(f.Name, group, dir, logger)
	if f.BuildDir != "" {
		p.BuildDir = absIn(dir, f.BuildDir)
	}
	p.Block = build.Block{
		PagesPackage:        f.PagesPackage,
		APIPackage:          f.APIPackage,
		ProcessorDependency: f.Processor,
	}

	if err := procsetup.ApplyProcessorPlugin(p); err != nil {
		return nil, err
	}

	for _, tf := range f.Targets {
		platform, err := build.ParsePlatform(tf.Platform)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", tf.Name, err)
		}
		t := &build.Target{Name: tf.Name, Platform: platform}
		for _, src := range tf.Sources {
			importPath := src.ImportPath
			if importPath == "" {
				importPath = path.Join(group, filepath.ToSlash(filepath.Clean(src.Dir)))
			}
			t.Sources = append(t.Sources, processing.SourceRoot{Dir: absIn(dir, src.Dir), ImportPath: importPath})
		}
		for _, res := range tf.Resources {
			t.ResourceDirs = append(t.ResourceDirs, absIn(dir, res))
		}

		if err := p.AddTarget(t); err != nil {
			return nil, err
		}

		switch platform {
		case build.PlatformScript:
			mode := pagegen.ModeFrontend
			if tf.Mode != "" {
				if mode, err = pagegen.ParseMode(tf.Mode); err != nil {
					return nil, fmt.Errorf("target %s: %w", tf.Name, err)
				}
			}
			err = procsetup.ConfigureScript(p, t, mode)
		case build.PlatformServer:
			err = procsetup.ConfigureBytecode(p, t)
		}
		if err != nil {
			return nil, fmt.Errorf("configure target %s: %w", tf.Name, err)
		}
	}
	return p, nil
}

func absIn(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
