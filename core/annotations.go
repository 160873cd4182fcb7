// Package core holds the annotation names and runtime helpers that pageproc
// generated code depends on.
//
// Annotations are written as comment lines in a declaration's doc comment:
//
//	// @github.com/Alia5/pageproc/core.Page
//	func HomePage() {
//		core.Text("Welcome")
//	}
//
// Names must be fully qualified and match exactly.
package core

const (
	// PageAnnotation marks a function as a page.
	PageAnnotation = "github.com/Alia5/pageproc/core.Page"
	// ComposableAnnotation marks a function as renderable by the runtime.
	ComposableAnnotation = "github.com/Alia5/pageproc/core.Composable"
)

// ImportPath is the import path generated code uses to reach this package.
const ImportPath = "github.com/Alia5/pageproc/core"
