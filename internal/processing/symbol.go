package processing

import (
	"fmt"
	"regexp"
	"strings"
)

// DeclKind is the kind of a top-level declaration.
type DeclKind int

const (
	KindFunction DeclKind = iota
	KindMethod
	KindType
	KindVar
	KindConst
)

func (k DeclKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindType:
		return "type"
	case KindVar:
		return "var"
	case KindConst:
		return "const"
	default:
		return "unknown"
	}
}

func (k DeclKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *DeclKind) UnmarshalText(text []byte) error {
	for c := KindFunction; c <= KindConst; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown declaration kind %q", text)
}

// FileRef identifies a source file visible to a processing pass.
type FileRef struct {
	Path        string `json:"path"`        // cleaned absolute path
	Package     string `json:"package"`     // package path, e.g. "com.example.pages"
	PackageName string `json:"packageName"` // name from the package clause
}

// Annotation is a parsed "@qualified.Name(args)" comment line.
type Annotation struct {
	Name string `json:"name"`
	Args string `json:"args,omitempty"`
}

// Symbol is an annotated top-level declaration.
// Symbols only reference the parsed sources and never modify them.
type Symbol struct {
	Name        string       `json:"name"` // "Recv.Name" for methods
	Package     string       `json:"package"`
	Kind        DeclKind     `json:"kind"`
	File        *FileRef     `json:"file"`
	Line        int          `json:"line"`
	Annotations []Annotation `json:"annotations"`
}

// QualifiedName returns "<package>.<name>".
func (s Symbol) QualifiedName() string {
	if s.Package == "" {
		return s.Name
	}
	return s.Package + "." + s.Name
}

// HasAnnotation reports whether s carries the annotation with the exact qualified name.
func (s Symbol) HasAnnotation(name string) bool {
	for _, a := range s.Annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}

// annotationPattern matches: @<qualified.Name> [(args)]
var annotationPattern = regexp.MustCompile(`^@([A-Za-z_][\w./-]*\.[A-Za-z_]\w*)(?:\((.*)\))?\s*$`)

// parseAnnotation parses a single comment line.
func parseAnnotation(comment string) (Annotation, bool) {
	text := strings.TrimSpace(strings.TrimPrefix(comment, "//"))
	matches := annotationPattern.FindStringSubmatch(text)
	if matches == nil {
		return Annotation{}, false
	}
	return Annotation{Name: matches[1], Args: strings.TrimSpace(matches[2])}, true
}
