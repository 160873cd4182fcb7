package processing

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Dependencies records which inputs a generated file was derived from.
//
// An aggregating output is invalidated whenever any input of the pass changes.
// An isolating output is only invalidated when one of Files changes.
type Dependencies struct {
	Aggregating bool     `json:"aggregating"`
	Files       []string `json:"files"`
}

// NewDependencies builds Dependencies from originating files.
func NewDependencies(aggregating bool, files ...*FileRef) Dependencies {
	deps := Dependencies{Aggregating: aggregating}
	for _, f := range files {
		if f != nil {
			deps.Files = append(deps.Files, f.Path)
		}
	}
	sort.Strings(deps.Files)
	return deps
}

// CodeGenerator is the sink processors write generated files to.
type CodeGenerator interface {
	// CreateNewFile opens a new generated file. Extension "go" produces a Go
	// source file, any other extension a resource.
	// Writing a file that already exists replaces it on Close.
	CreateNewFile(deps Dependencies, packagePath, fileName, extension string) (io.WriteCloser, error)
	// GeneratedFiles lists every file written so far, in write order.
	GeneratedFiles() []string
}

// ArtifactLogger receives the content of every generated file.
type ArtifactLogger interface {
	Log(path string, data []byte)
}

// FileCodeGenerator writes generated files to disk.
//
// Go sources go under <outputDir>/go/<package path> and resources under
// <outputDir>/resources/<package path>. Nothing is written into source roots,
// so targets sharing a root keep separate outputs.
type FileCodeGenerator struct {
	outputDir string
	artifacts ArtifactLogger

	mu    sync.Mutex
	files []string
	deps  map[string]Dependencies
}

// NewFileCodeGenerator returns a sink rooted at outputDir; artifacts may be nil.
func NewFileCodeGenerator(outputDir string, artifacts ArtifactLogger) *FileCodeGenerator {
	return &FileCodeGenerator{
		outputDir: outputDir,
		artifacts: artifacts,
		deps:      make(map[string]Dependencies),
	}
}

// SourceOutputRoot is the root generated Go sources are written under. Its
// package paths are the relative directories.
func SourceOutputRoot(outputDir string) SourceRoot {
	return SourceRoot{Dir: filepath.Join(outputDir, "go")}
}

// SourceOutputDir is the directory holding generated Go sources.
func (g *FileCodeGenerator) SourceOutputDir() string {
	return SourceOutputRoot(g.outputDir).Dir
}

// ResourceOutputDir is the directory holding generated resources.
func (g *FileCodeGenerator) ResourceOutputDir() string {
	return filepath.Join(g.outputDir, "resources")
}

func (g *FileCodeGenerator) pathFor(packagePath, fileName, extension string) (string, error) {
	if fileName == "" || strings.ContainsAny(fileName, `/\`) {
		return "", fmt.Errorf("invalid generated file name %q", fileName)
	}
	name := fileName
	if extension != "" {
		name += "." + extension
	}
	pkgDir := filepath.FromSlash(packagePath)
	if extension == "go" {
		return filepath.Join(g.SourceOutputDir(), pkgDir, name), nil
	}
	return filepath.Join(g.ResourceOutputDir(), pkgDir, name), nil
}

func (g *FileCodeGenerator) CreateNewFile(deps Dependencies, packagePath, fileName, extension string) (io.WriteCloser, error) {
	p, err := g.pathFor(packagePath, fileName, extension)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", p, err)
	}
	return &generatedFile{g: g, path: abs, deps: deps}, nil
}

func (g *FileCodeGenerator) GeneratedFiles() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.files...)
}

// Dependencies returns the recorded dependencies per generated file.
func (g *FileCodeGenerator) Dependencies() map[string]Dependencies {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]Dependencies, len(g.deps))
	for k, v := range g.deps {
		out[k] = v
	}
	return out
}

func (g *FileCodeGenerator) record(path string, deps Dependencies, data []byte) {
	g.mu.Lock()
	if _, ok := g.deps[path]; !ok {
		g.files = append(g.files, path)
	}
	g.deps[path] = deps
	g.mu.Unlock()

	if g.artifacts != nil {
		g.artifacts.Log(path, data)
	}
}

type generatedFile struct {
	g      *FileCodeGenerator
	path   string
	deps   Dependencies
	buf    bytes.Buffer
	closed bool
}

func (f *generatedFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	return f.buf.Write(p)
}

func (f *generatedFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if err := writeFileAtomic(f.path, f.buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write generated file %s: %w", f.path, err)
	}
	f.g.record(f.path, f.deps, f.buf.Bytes())
	return nil
}

// writeFileAtomic writes via a temp file and rename so readers never observe
// a partially written file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
