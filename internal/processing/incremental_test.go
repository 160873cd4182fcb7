package processing_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/pageproc/internal/processing"
)

func TestIndexPlan(t *testing.T) {
	dir := t.TempDir()
	existing := func(name string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(name), 0o644))
		return p
	}
	aggregate := existing("frontend.json")
	isolated := existing("a_copy.gen.go")
	missing := filepath.Join(dir, "gone.json")

	tests := []struct {
		name        string
		index       func() *processing.Index
		current     map[string]string
		config      string
		upToDate    bool
		fullScan    bool
		configDiff  bool
		dirty       []string
		invalidated []string
		retained    []string
	}{
		{
			name:     "empty index is a full scan",
			index:    processing.NewIndex,
			current:  map[string]string{"/a.go": "1"},
			fullScan: true,
			dirty:    []string{"/a.go"},
		},
		{
			name: "unchanged inputs are up to date",
			index: func() *processing.Index {
				idx := processing.NewIndex()
				idx.Inputs = map[string]string{"/a.go": "1"}
				idx.Outputs[aggregate] = processing.Dependencies{Aggregating: true, Files: []string{"/a.go"}}
				return idx
			},
			current:  map[string]string{"/a.go": "1"},
			upToDate: true,
			retained: []string{aggregate},
		},
		{
			name: "any change invalidates aggregating outputs",
			index: func() *processing.Index {
				idx := processing.NewIndex()
				idx.Inputs = map[string]string{"/a.go": "1", "/b.go": "1"}
				idx.Outputs[aggregate] = processing.Dependencies{Aggregating: true, Files: []string{"/a.go"}}
				idx.Outputs[isolated] = processing.Dependencies{Files: []string{"/a.go"}}
				return idx
			},
			current:     map[string]string{"/a.go": "1", "/b.go": "2"},
			fullScan:    true,
			dirty:       []string{"/b.go"},
			invalidated: []string{aggregate},
			retained:    []string{isolated},
		},
		{
			name: "isolating output follows its own files",
			index: func() *processing.Index {
				idx := processing.NewIndex()
				idx.Inputs = map[string]string{"/a.go": "1", "/b.go": "1"}
				idx.Outputs[isolated] = processing.Dependencies{Files: []string{"/a.go"}}
				return idx
			},
			current:     map[string]string{"/a.go": "2", "/b.go": "1"},
			dirty:       []string{"/a.go"},
			invalidated: []string{isolated},
		},
		{
			name: "removed input invalidates",
			index: func() *processing.Index {
				idx := processing.NewIndex()
				idx.Inputs = map[string]string{"/a.go": "1"}
				idx.Outputs[isolated] = processing.Dependencies{Files: []string{"/a.go"}}
				return idx
			},
			current:     map[string]string{},
			invalidated: []string{isolated},
		},
		{
			name: "missing output is regenerated",
			index: func() *processing.Index {
				idx := processing.NewIndex()
				idx.Inputs = map[string]string{"/a.go": "1"}
				idx.Outputs[missing] = processing.Dependencies{Aggregating: true}
				return idx
			},
			current:     map[string]string{"/a.go": "1"},
			fullScan:    true,
			invalidated: []string{missing},
		},
		{
			name: "changed configuration invalidates every output",
			index: func() *processing.Index {
				idx := processing.NewIndex()
				idx.Config = "old"
				idx.Inputs = map[string]string{"/a.go": "1", "/b.go": "1"}
				idx.Outputs[aggregate] = processing.Dependencies{Aggregating: true, Files: []string{"/a.go"}}
				idx.Outputs[isolated] = processing.Dependencies{Files: []string{"/a.go"}}
				return idx
			},
			current:     map[string]string{"/a.go": "1", "/b.go": "1"},
			config:      "new",
			fullScan:    true,
			configDiff:  true,
			dirty:       []string{"/a.go", "/b.go"},
			invalidated: []string{isolated, aggregate},
		},
		{
			name:     "configuration of an empty index is not compared",
			index:    processing.NewIndex,
			current:  map[string]string{"/a.go": "1"},
			config:   "new",
			fullScan: true,
			dirty:    []string{"/a.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := tt.index().Plan(tt.current, tt.config)
			assert.Equal(t, tt.upToDate, plan.UpToDate)
			assert.Equal(t, tt.fullScan, plan.FullScan)
			assert.Equal(t, tt.configDiff, plan.ConfigChanged)
			assert.Equal(t, tt.dirty, plan.Dirty)
			assert.Equal(t, tt.invalidated, plan.Invalidated)
			assert.Equal(t, tt.retained, plan.Retained)
		})
	}
}

func TestIndexSaveLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), processing.IndexFileName)

	idx, err := processing.LoadIndex(p)
	require.NoError(t, err)
	assert.Empty(t, idx.Inputs)

	idx.Config = processing.ConfigFingerprint([]string{"p"}, map[string]string{"k": "v"})
	idx.Inputs["/a.go"] = "abc"
	idx.Outputs["/out.json"] = processing.Dependencies{Aggregating: true, Files: []string{"/a.go"}}
	require.NoError(t, idx.Save(p))

	loaded, err := processing.LoadIndex(p)
	require.NoError(t, err)
	assert.Equal(t, idx, loaded)
	assert.Equal(t, []string{"/out.json"}, loaded.OutputFiles())

	require.NoError(t, os.WriteFile(p, []byte("{"), 0o644))
	_, err = processing.LoadIndex(p)
	assert.Error(t, err)
}

func TestConfigFingerprint(t *testing.T) {
	base := processing.ConfigFingerprint([]string{"a", "b"}, map[string]string{"x": "1", "y": "2"})
	assert.Len(t, base, 64)

	tests := []struct {
		name        string
		coordinates []string
		options     map[string]string
		same        bool
	}{
		{name: "same", coordinates: []string{"a", "b"}, options: map[string]string{"y": "2", "x": "1"}, same: true},
		{name: "changed option", coordinates: []string{"a", "b"}, options: map[string]string{"x": "1", "y": "3"}},
		{name: "added option", coordinates: []string{"a", "b"}, options: map[string]string{"x": "1", "y": "2", "z": ""}},
		{name: "moved separator", coordinates: []string{"a", "b"}, options: map[string]string{"x": "1y", "": "2"}},
		{name: "reordered processors", coordinates: []string{"b", "a"}, options: map[string]string{"x": "1", "y": "2"}},
		{name: "dropped processor", coordinates: []string{"a"}, options: map[string]string{"x": "1", "y": "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := processing.ConfigFingerprint(tt.coordinates, tt.options)
			if tt.same {
				assert.Equal(t, base, got)
			} else {
				assert.NotEqual(t, base, got)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.go")
	b := filepath.Join(dir, "b.go")
	require.NoError(t, os.WriteFile(a, []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("package a"), 0o644))

	fa, err := processing.Fingerprint(a)
	require.NoError(t, err)
	fb, err := processing.Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)

	require.NoError(t, os.WriteFile(b, []byte("package b"), 0o644))
	fb, err = processing.Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)

	_, err = processing.Fingerprints([]*processing.FileRef{{Path: filepath.Join(dir, "missing.go")}})
	assert.Error(t, err)
}
