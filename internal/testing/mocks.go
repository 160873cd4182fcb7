package testing

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/Alia5/pageproc/internal/processing"
)

// WriteFiles creates files below root. Keys are slash separated paths.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// MemoryCodeGenerator keeps generated files in memory, keyed by
// "<package>/<file>.<ext>".
type MemoryCodeGenerator struct {
	mu    sync.Mutex
	order []string
	files map[string][]byte
	deps  map[string]processing.Dependencies
}

func NewMemoryCodeGenerator() *MemoryCodeGenerator {
	return &MemoryCodeGenerator{
		files: make(map[string][]byte),
		deps:  make(map[string]processing.Dependencies),
	}
}

func (m *MemoryCodeGenerator) CreateNewFile(deps processing.Dependencies, packagePath, fileName, extension string) (io.WriteCloser, error) {
	return &memoryFile{m: m, key: packagePath + "/" + fileName + "." + extension, deps: deps}, nil
}

func (m *MemoryCodeGenerator) GeneratedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// File returns the content written under key.
func (m *MemoryCodeGenerator) File(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[key]
	return b, ok
}

// Deps returns the dependencies recorded for key.
func (m *MemoryCodeGenerator) Deps(key string) processing.Dependencies {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deps[key]
}

// Keys lists the generated keys, sorted.
func (m *MemoryCodeGenerator) Keys() []string {
	keys := m.GeneratedFiles()
	sort.Strings(keys)
	return keys
}

type memoryFile struct {
	m    *MemoryCodeGenerator
	key  string
	deps processing.Dependencies
	buf  bytes.Buffer
}

func (f *memoryFile) Write(p []byte) (int, error) { return f.buf.Write(p) }

func (f *memoryFile) Close() error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.files[f.key]; !ok {
		f.m.order = append(f.m.order, f.key)
	}
	f.m.files[f.key] = f.buf.Bytes()
	f.m.deps[f.key] = f.deps
	return nil
}

type mockProcessor struct {
	process func(ctx context.Context, r processing.Resolver) ([]processing.Symbol, error)
	finish  func(ctx context.Context) error
}

func (m *mockProcessor) Process(ctx context.Context, r processing.Resolver) ([]processing.Symbol, error) {
	return m.process(ctx, r)
}

func (m *mockProcessor) Finish(ctx context.Context) error {
	if m.finish == nil {
		return nil
	}
	return m.finish(ctx)
}

// CreateMockProcessor returns a processor calling process every round and
// finish after the last one. finish may be nil.
func CreateMockProcessor(
	t *testing.T,
	process func(ctx context.Context, r processing.Resolver) ([]processing.Symbol, error),
	finish func(ctx context.Context) error,
) processing.Processor {
	t.Helper()
	return &mockProcessor{process: process, finish: finish}
}
