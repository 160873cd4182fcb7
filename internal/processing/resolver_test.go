package processing_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/pageproc/internal/processing"
	th "github.com/Alia5/pageproc/internal/testing"
)

const page = "github.com/Alia5/pageproc/core.Page"

func TestSymbolsWithAnnotation(t *testing.T) {
	root := t.TempDir()
	th.WriteFiles(t, root, map[string]string{
		"pages/home.go": `package pages

// HomePage renders the landing page.
//
//@github.com/Alia5/pageproc/core.Page
func HomePage() {}

// @github.com/Alia5/pageproc/core.Page
type Layout struct{}

// @github.com/Alia5/pageproc/core.Page("admin")
func (l *Layout) Render() {}

// @github.com/Alia5/pageproc/core.Page
var Title = "home"

const (
	// @github.com/Alia5/pageproc/core.Page
	Version = 1
	Other   = 2
)

// Plain is not annotated.
func Plain() {}

// @github.com/Alia5/pageproc/core.PageOther
func NotAPage() {}
`,
		"pages/home_test.go": `package pages

// @github.com/Alia5/pageproc/core.Page
func TestOnly() {}
`,
		"pages/testdata/skip.go": `package skip

// @github.com/Alia5/pageproc/core.Page
func Hidden() {}
`,
	})

	r := processing.NewSourceResolver([]processing.SourceRoot{{Dir: root, ImportPath: "com.example"}}, true)
	syms, err := r.SymbolsWithAnnotation(page)
	require.NoError(t, err)

	type got struct {
		name string
		kind processing.DeclKind
		args string
	}
	var names []got
	for _, s := range syms {
		names = append(names, got{s.Name, s.Kind, s.Annotations[0].Args})
		assert.Equal(t, "com.example/pages", s.Package)
		assert.Equal(t, filepath.Join(root, "pages", "home.go"), s.File.Path)
		assert.Equal(t, "pages", s.File.PackageName)
	}
	assert.Equal(t, []got{
		{"HomePage", processing.KindFunction, ""},
		{"Layout", processing.KindType, ""},
		{"Layout.Render", processing.KindMethod, `"admin"`},
		{"Title", processing.KindVar, ""},
		{"Version", processing.KindConst, ""},
	}, names)
	assert.Equal(t, "com.example/pages.HomePage", syms[0].QualifiedName())
	assert.Equal(t, 6, syms[0].Line)
}

func TestSymbolsWithAnnotationGenerated(t *testing.T) {
	root := t.TempDir()
	th.WriteFiles(t, root, map[string]string{
		"home.go":          "package pages\n\n// @" + page + "\nfunc HomePage() {}\n",
		"home_copy.gen.go": "// " + processing.GeneratedHeader + "\n\npackage pages\n\n// @" + page + "\nfunc HomePageCopy() {}\n",
		"about_templ.go":   "// Code generated by templ - DO NOT EDIT.\n\npackage pages\n\n// @" + page + "\nfunc AboutPage() {}\n",
		"kind_string.go":   "// Code generated by \"stringer -type=Kind\"; DO NOT EDIT.\n\npackage pages\n\n// @" + page + "\nfunc KindPage() {}\n",
		"late.go":          "package pages\n\n// " + processing.GeneratedHeader + "\n\n// @" + page + "\nfunc LatePage() {}\n",
	})

	tests := []struct {
		name          string
		skipGenerated bool
		expected      []string
	}{
		{name: "skip own copies", skipGenerated: true, expected: []string{"AboutPage", "HomePage", "KindPage", "LatePage"}},
		{name: "include copies", skipGenerated: false, expected: []string{"AboutPage", "HomePage", "HomePageCopy", "KindPage", "LatePage"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := processing.NewSourceResolver([]processing.SourceRoot{{Dir: root}}, tt.skipGenerated)
			syms, err := r.SymbolsWithAnnotation(page)
			require.NoError(t, err)
			var names []string
			for _, s := range syms {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestResolverRestrict(t *testing.T) {
	root := t.TempDir()
	th.WriteFiles(t, root, map[string]string{
		"a.go": "package p\n\n// @" + page + "\nfunc A() {}\n",
		"b.go": "package p\n\n// @" + page + "\nfunc B() {}\n",
	})
	base := processing.NewSourceResolver([]processing.SourceRoot{{Dir: root, ImportPath: "ex"}}, true)
	r := base.Restrict([]string{filepath.Join(root, "b.go")}, false)

	files, err := r.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "b.go"), files[0].Path)
	assert.Equal(t, "ex", files[0].Package)

	all, err := base.Files()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestResolverMissingRoot(t *testing.T) {
	r := processing.NewSourceResolver([]processing.SourceRoot{{Dir: filepath.Join(t.TempDir(), "missing")}}, true)
	files, err := r.Files()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestResolverParseError(t *testing.T) {
	root := t.TempDir()
	th.WriteFiles(t, root, map[string]string{"bad.go": "package p\nfunc {"})
	_, err := processing.NewSourceResolver([]processing.SourceRoot{{Dir: root}}, true).Files()
	assert.Error(t, err)
}

func TestPackageMapping(t *testing.T) {
	root := t.TempDir()
	r := processing.NewSourceResolver([]processing.SourceRoot{{Dir: root, ImportPath: "com.example"}}, true)

	pkg, ok := r.PackagePath(filepath.Join(root, "pages", "blog"))
	assert.True(t, ok)
	assert.Equal(t, "com.example/pages/blog", pkg)

	pkg, ok = r.PackagePath(root)
	assert.True(t, ok)
	assert.Equal(t, "com.example", pkg)

	_, ok = r.PackagePath(filepath.Dir(root))
	assert.False(t, ok)
}

func TestParseAnnotationForms(t *testing.T) {
	root := t.TempDir()
	th.WriteFiles(t, root, map[string]string{
		"a.go": `package p

//@` + page + `
func Tight() {}

// @` + page + `()
func Empty() {}

// see @` + page + `
func Prose() {}

// @Page
func Unqualified() {}
`,
	})
	syms, err := processing.NewSourceResolver([]processing.SourceRoot{{Dir: root}}, true).SymbolsWithAnnotation(page)
	require.NoError(t, err)
	var names []string
	for _, s := range syms {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Tight", "Empty"}, names)
}
