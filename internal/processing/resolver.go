package processing

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Resolver exposes the declarations visible in one processing round.
type Resolver interface {
	// SymbolsWithAnnotation returns every top-level declaration carrying the
	// annotation with the exact qualified name, ordered by file and position.
	SymbolsWithAnnotation(name string) ([]Symbol, error)
	// Files returns the files visible to this round.
	Files() ([]*FileRef, error)
}

// GeneratedHeader marks files written by pageproc itself.
const GeneratedHeader = "Code generated by pageproc. DO NOT EDIT."

// SourceRoot maps a directory tree to a package path prefix.
// An empty ImportPath makes package paths the slash-separated relative directory.
type SourceRoot struct {
	Dir        string `json:"dir" yaml:"dir" toml:"dir"`
	ImportPath string `json:"importPath" yaml:"importPath" toml:"importPath"`
}

type parsedFile struct {
	ref  *FileRef
	file *ast.File
}

// SourceResolver parses Go sources below a set of roots.
type SourceResolver struct {
	roots         []SourceRoot
	skipGenerated bool
	only          map[string]bool // nil means every file

	once   sync.Once
	fset   *token.FileSet
	parsed []*parsedFile
	err    error
}

// NewSourceResolver returns a resolver over roots. When skipGenerated is set,
// files carrying GeneratedHeader are not visible. Files generated by other
// tools are always visible.
func NewSourceResolver(roots []SourceRoot, skipGenerated bool) *SourceResolver {
	cleaned := make([]SourceRoot, 0, len(roots))
	for _, r := range roots {
		dir, err := filepath.Abs(r.Dir)
		if err != nil {
			dir = filepath.Clean(r.Dir)
		}
		cleaned = append(cleaned, SourceRoot{Dir: dir, ImportPath: r.ImportPath})
	}
	return &SourceResolver{roots: cleaned, skipGenerated: skipGenerated}
}

// Restrict returns a resolver over the same roots that only exposes paths.
func (r *SourceResolver) Restrict(paths []string, skipGenerated bool) *SourceResolver {
	only := make(map[string]bool, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		only[filepath.Clean(p)] = true
	}
	return &SourceResolver{roots: r.roots, only: only, skipGenerated: skipGenerated}
}

// Roots returns the cleaned roots of r.
func (r *SourceResolver) Roots() []SourceRoot {
	return append([]SourceRoot(nil), r.roots...)
}

// PackagePath returns the package path for a directory, or false when dir is
// outside every root.
func (r *SourceResolver) PackagePath(dir string) (string, bool) {
	return packagePathFor(r.roots, dir)
}

func packagePathFor(roots []SourceRoot, dir string) (string, bool) {
	for _, root := range roots {
		rel, err := filepath.Rel(root.Dir, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rel = filepath.ToSlash(rel)
		switch {
		case rel == ".":
			return root.ImportPath, true
		case root.ImportPath == "":
			return rel, true
		default:
			return path.Join(root.ImportPath, rel), true
		}
	}
	return "", false
}

func (r *SourceResolver) load() error {
	r.once.Do(func() {
		r.fset = token.NewFileSet()
		seen := make(map[string]bool)
		for _, root := range r.roots {
			err := filepath.WalkDir(root.Dir, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					if p == root.Dir && errors.Is(err, fs.ErrNotExist) {
						return filepath.SkipDir
					}
					return err
				}
				if d.IsDir() {
					name := d.Name()
					if p != root.Dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata" || name == "vendor") {
						return filepath.SkipDir
					}
					return nil
				}
				if !strings.HasSuffix(p, ".go") || strings.HasSuffix(p, "_test.go") || seen[p] {
					return nil
				}
				if r.only != nil && !r.only[p] {
					return nil
				}
				seen[p] = true
				return r.parse(root, p)
			})
			if err != nil {
				r.err = fmt.Errorf("scan %s: %w", root.Dir, err)
				return
			}
		}
		sort.SliceStable(r.parsed, func(i, j int) bool {
			return r.parsed[i].ref.Path < r.parsed[j].ref.Path
		})
	})
	return r.err
}

func (r *SourceResolver) parse(root SourceRoot, p string) error {
	file, err := parser.ParseFile(r.fset, p, nil, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("parse %s: %w", p, err)
	}
	if r.skipGenerated && generatedByPageproc(file) {
		return nil
	}
	pkg, _ := packagePathFor([]SourceRoot{root}, filepath.Dir(p))
	r.parsed = append(r.parsed, &parsedFile{
		ref:  &FileRef{Path: p, Package: pkg, PackageName: file.Name.Name},
		file: file,
	})
	return nil
}

// generatedByPageproc reports whether GeneratedHeader appears as a line
// comment above the package clause.
func generatedByPageproc(file *ast.File) bool {
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if strings.TrimSpace(strings.TrimPrefix(c.Text, "//")) == GeneratedHeader {
				return true
			}
		}
	}
	return false
}

func (r *SourceResolver) Files() ([]*FileRef, error) {
	if err := r.load(); err != nil {
		return nil, err
	}
	out := make([]*FileRef, 0, len(r.parsed))
	for _, pf := range r.parsed {
		out = append(out, pf.ref)
	}
	return out, nil
}

func (r *SourceResolver) SymbolsWithAnnotation(name string) ([]Symbol, error) {
	if err := r.load(); err != nil {
		return nil, err
	}
	var out []Symbol
	for _, pf := range r.parsed {
		for _, sym := range r.declarations(pf) {
			if sym.HasAnnotation(name) {
				out = append(out, sym)
			}
		}
	}
	return out, nil
}

// declarations lists every annotated top-level declaration of a file.
func (r *SourceResolver) declarations(pf *parsedFile) []Symbol {
	var out []Symbol
	add := func(name string, kind DeclKind, pos token.Pos, doc *ast.CommentGroup) {
		annotations := annotationsOf(doc)
		if len(annotations) == 0 {
			return
		}
		out = append(out, Symbol{
			Name:        name,
			Package:     pf.ref.Package,
			Kind:        kind,
			File:        pf.ref,
			Line:        r.fset.Position(pos).Line,
			Annotations: annotations,
		})
	}

	for _, decl := range pf.file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv != nil && len(d.Recv.List) > 0 {
				add(receiverName(d.Recv.List[0].Type)+"."+d.Name.Name, KindMethod, d.Pos(), d.Doc)
				continue
			}
			add(d.Name.Name, KindFunction, d.Pos(), d.Doc)
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					add(s.Name.Name, KindType, s.Pos(), specDoc(d, s.Doc))
				case *ast.ValueSpec:
					kind := KindVar
					if d.Tok == token.CONST {
						kind = KindConst
					}
					for _, n := range s.Names {
						add(n.Name, kind, n.Pos(), specDoc(d, s.Doc))
					}
				}
			}
		}
	}
	return out
}

// specDoc falls back to the declaration doc for single-spec declarations.
func specDoc(d *ast.GenDecl, doc *ast.CommentGroup) *ast.CommentGroup {
	if doc == nil && len(d.Specs) == 1 {
		return d.Doc
	}
	return doc
}

func annotationsOf(doc *ast.CommentGroup) []Annotation {
	if doc == nil {
		return nil
	}
	var out []Annotation
	for _, c := range doc.List {
		if a, ok := parseAnnotation(c.Text); ok {
			out = append(out, a)
		}
	}
	return out
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return "?"
	}
}
