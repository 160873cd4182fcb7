package pagegen

import "strings"

// CopyName derives the name of the generated copy of a page function.
func CopyName(name string) string {
	return name + "Copy"
}

// toSnakeCase converts "HomePage" to "home_page" and "XMLPage" to "xml_page".
func toSnakeCase(s string) string {
	return toSeparated(s, '_')
}

func toKebabCase(s string) string {
	return toSeparated(s, '-')
}

func toSeparated(s string, sep byte) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '_' || r == '-' {
			b.WriteByte(sep)
			continue
		}
		if i > 0 && isUpper(r) {
			prevIsLower := isLower(runes[i-1]) || isDigit(runes[i-1])
			nextIsLower := i+1 < len(runes) && isLower(runes[i+1])
			if prevIsLower || (nextIsLower && isUpper(runes[i-1])) {
				b.WriteByte(sep)
			}
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// Route derives the route of a page from its package relative to root and its
// function name. "Index" pages map to their package route. ok is false when
// pkg is outside root.
//
//	Route("com.acme.pages", "com.acme.pages.blog", "PostPage") == "/blog/post"
func Route(root, pkg, name string) (route string, ok bool) {
	rel, ok := relativePackage(root, pkg)
	if !ok {
		return "", false
	}
	var parts []string
	for _, seg := range rel {
		parts = append(parts, toKebabCase(seg))
	}
	slug := strings.TrimSuffix(name, "Page")
	if slug == "" {
		slug = name
	}
	if slug != "Index" {
		parts = append(parts, toKebabCase(slug))
	}
	return "/" + strings.Join(parts, "/"), true
}

// relativePackage splits pkg below root on "." and "/".
func relativePackage(root, pkg string) ([]string, bool) {
	if pkg == root {
		return nil, true
	}
	if root != "" {
		rest, found := strings.CutPrefix(pkg, root)
		if !found || rest == "" || (rest[0] != '.' && rest[0] != '/') {
			return nil, false
		}
		pkg = rest[1:]
	}
	return strings.FieldsFunc(pkg, func(r rune) bool { return r == '.' || r == '/' }), true
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
