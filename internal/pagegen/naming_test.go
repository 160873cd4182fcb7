package pagegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyName(t *testing.T) {
	assert.Equal(t, "HomePageCopy", CopyName("HomePage"))
	assert.Equal(t, "HomePageCopyCopy", CopyName(CopyName("HomePage")))
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"HomePage", "home_page"},
		{"HomePageCopy", "home_page_copy"},
		{"XMLPage", "xml_page"},
		{"Page2Copy", "page2_copy"},
		{"already_snake", "already_snake"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, toSnakeCase(tt.in))
		})
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name          string
		root, pkg, fn string
		expected      string
		expectedOK    bool
	}{
		{name: "nested package", root: "com.acme.pages", pkg: "com.acme.pages.blog", fn: "PostPage", expected: "/blog/post", expectedOK: true},
		{name: "slash separated", root: "com.acme/pages", pkg: "com.acme/pages/blog", fn: "PostPage", expected: "/blog/post", expectedOK: true},
		{name: "index page", root: "com.acme.pages", pkg: "com.acme.pages", fn: "IndexPage", expected: "/", expectedOK: true},
		{name: "nested index", root: "com.acme.pages", pkg: "com.acme.pages.docs", fn: "Index", expected: "/docs", expectedOK: true},
		{name: "copy keeps suffix", root: "com.acme.pages", pkg: "com.acme.pages", fn: "HomePageCopy", expected: "/home-page-copy", expectedOK: true},
		{name: "bare Page", root: "com.acme.pages", pkg: "com.acme.pages", fn: "Page", expected: "/page", expectedOK: true},
		{name: "kebab package", root: "com.acme.pages", pkg: "com.acme.pages.userProfile", fn: "EditPage", expected: "/user-profile/edit", expectedOK: true},
		{name: "sibling prefix", root: "com.acme.pages", pkg: "com.acme.pagesx", fn: "HomePage", expectedOK: false},
		{name: "outside root", root: "com.acme.pages", pkg: "org.other", fn: "HomePage", expectedOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, ok := Route(tt.root, tt.pkg, tt.fn)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expected, route)
		})
	}
}
