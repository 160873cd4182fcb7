package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/pageproc/internal/log"
	"github.com/Alia5/pageproc/internal/project"
	th "github.com/Alia5/pageproc/internal/testing"
)

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	th.WriteFiles(t, dir, map[string]string{
		"go.mod": "module com.example\n",
		"pageproc.yaml": `name: site
pagesPackage: ./web/pages
apiPackage: ./server/api
targets:
  - name: script
    platform: script
    sources:
      - dir: web
  - name: server
    platform: server
    sources:
      - dir: server
`,
		"web/pages/home.go":   "package pages\n\n// @github.com/Alia5/pageproc/core.Page\nfunc HomePage() {}\n",
		"server/api/hello.go": "package api\n\n// @github.com/Alia5/pageproc/core.Page\nfunc Hello() {}\n",
	})
	return dir
}

func TestBuildExecute(t *testing.T) {
	dir := writeSite(t)
	var artifacts bytes.Buffer
	b := &Build{ProjectFlags: ProjectFlags{Dir: dir}, Target: []string{"script"}, MaxRounds: 100}

	err := b.Execute(context.Background(), slog.New(slog.DiscardHandler), log.NewArtifactLogger(&artifacts))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, ".pageproc", "script", "generated", "go", "com.example", "web", "pages", "home_page_copy.gen.go"))
	assert.NoFileExists(t, filepath.Join(dir, "web", "pages", "home_page_copy.gen.go"))
	assert.NoDirExists(t, filepath.Join(dir, ".pageproc", "server"))
	assert.FileExists(t, filepath.Join(dir, ".pageproc", "script", "resources", "frontend.json"))
	assert.Contains(t, artifacts.String(), "home_page_copy.gen.go")

	b.Target = []string{"mobile"}
	err = b.Execute(context.Background(), slog.New(slog.DiscardHandler), log.NewArtifactLogger(nil))
	assert.ErrorContains(t, err, `unknown target "mobile"`)
}

func TestBuildMissingProjectFile(t *testing.T) {
	b := &Build{ProjectFlags: ProjectFlags{Dir: t.TempDir()}}
	err := b.Execute(context.Background(), slog.New(slog.DiscardHandler), log.NewArtifactLogger(nil))
	assert.ErrorContains(t, err, "no pageproc")
}

func TestSymbols(t *testing.T) {
	dir := writeSite(t)
	var out bytes.Buffer
	s := &Symbols{ProjectFlags: ProjectFlags{Dir: dir}, out: &out}
	require.NoError(t, s.Run(slog.New(slog.DiscardHandler)))

	var got []TargetSymbols
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "script", got[0].Target)
	require.Len(t, got[0].Symbols, 1)
	assert.Equal(t, "com.example/web/pages.HomePage", got[0].Symbols[0].QualifiedName())
	assert.Equal(t, "server", got[1].Target)
	require.Len(t, got[1].Symbols, 1)
	assert.Equal(t, "Hello", got[1].Symbols[0].Name)
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()

	t.Run("project yaml", func(t *testing.T) {
		dest := filepath.Join(dir, "pageproc.yaml")
		c := &ConfigInit{Command: "project", Format: "yaml", Output: dest}
		require.NoError(t, c.Run())

		f, err := project.Load(dest)
		require.NoError(t, err)
		assert.Equal(t, project.Default(), f)

		assert.ErrorContains(t, c.Run(), "destination exists")
		c.Force = true
		assert.NoError(t, c.Run())
	})

	t.Run("build config", func(t *testing.T) {
		dest := filepath.Join(dir, "build.yaml")
		c := &ConfigInit{Command: "build", Format: "yml", Output: dest}
		require.NoError(t, c.Run())

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, yaml.Unmarshal(data, &m))
		assert.Equal(t, ".", m["dir"])
		assert.Equal(t, 100, m["maxRounds"])
		assert.Equal(t, false, m["keepGoing"])
		assert.Equal(t, []any{}, m["target"])
	})

	t.Run("symbols config", func(t *testing.T) {
		dest := filepath.Join(dir, "symbols.json")
		c := &ConfigInit{Command: "symbols", Format: "json", Output: dest}
		require.NoError(t, c.Run())

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, map[string]any{
			"dir":        ".",
			"project":    "",
			"target":     []any{},
			"annotation": "github.com/Alia5/pageproc/core.Page",
			"generated":  false,
		}, m)
	})

	t.Run("unsupported format", func(t *testing.T) {
		c := &ConfigInit{Command: "project", Format: "ini"}
		assert.ErrorContains(t, c.Run(), "unsupported format")
	})
}
