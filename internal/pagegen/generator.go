package pagegen

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/Alia5/pageproc/core"
	"github.com/Alia5/pageproc/internal/processing"
)

// ErrMissingOriginatingFile is returned when a resolved symbol has no source
// file. This is an internal invariant violation and fails the target.
var ErrMissingOriginatingFile = errors.New("symbol has no originating file")

// Artifact describes one generated page copy.
type Artifact struct {
	QualifiedName string
	Package       string
	Name          string
	FileName      string
	Content       []byte
	Dependencies  processing.Dependencies
}

// RenderCopy builds the copy of a page function. The result is a pure
// function of the symbol, so identical inputs render identical bytes.
func RenderCopy(sym processing.Symbol) (*Artifact, error) {
	if sym.File == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingOriginatingFile, sym.QualifiedName())
	}

	name := CopyName(sym.Name)
	pkgName := sym.File.PackageName
	if pkgName == "" {
		pkgName = lastSegment(sym.Package)
	}

	f := jen.NewFilePathName(sym.Package, pkgName)
	f.HeaderComment(processing.GeneratedHeader)
	f.Comment("@" + core.PageAnnotation).Line().
		Comment("@" + core.ComposableAnnotation).Line().
		Func().Id(name).Params().Block(
		jen.Qual(core.ImportPath, "Text").Call(jen.Lit("Copy of " + sym.Name)),
	)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}

	return &Artifact{
		QualifiedName: sym.Package + "." + name,
		Package:       sym.Package,
		Name:          name,
		FileName:      toSnakeCase(name) + ".gen",
		Content:       buf.Bytes(),
		// Aggregating: any input change regenerates every copy.
		Dependencies: processing.NewDependencies(true, sym.File),
	}, nil
}

// writeArtifact emits a into the sink, replacing a previous version.
func writeArtifact(codeGen processing.CodeGenerator, a *Artifact) error {
	w, err := codeGen.CreateNewFile(a.Dependencies, a.Package, a.FileName, "go")
	if err != nil {
		return err
	}
	if _, err := w.Write(a.Content); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func lastSegment(pkg string) string {
	for i := len(pkg) - 1; i >= 0; i-- {
		if pkg[i] == '/' || pkg[i] == '.' {
			return pkg[i+1:]
		}
	}
	return pkg
}
