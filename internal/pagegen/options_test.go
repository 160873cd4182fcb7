package pagegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/pageproc/internal/pagegen"
)

func TestResolvePackageShortcut(t *testing.T) {
	tests := []struct {
		token, expected string
	}{
		{".", "com.example"},
		{"./pages", "com.example/pages"},
		{"./", "com.example"},
		{".pages", "com.example.pages"},
		{".pages.", "com.example.pages"},
		{"org.other.pages", "org.other.pages"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.expected, pagegen.ResolvePackageShortcut("com.example", tt.token))
		})
	}
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]string
		expected  pagegen.Options
		expectErr bool
	}{
		{
			name: "frontend",
			args: map[string]string{
				pagegen.ProcessorModeKey: "FRONTEND",
				pagegen.PagesPackageKey:  "com.example.pages",
			},
			expected: pagegen.Options{PagesPackage: "com.example.pages", Mode: pagegen.ModeFrontend},
		},
		{
			name: "api",
			args: map[string]string{
				pagegen.ProcessorModeKey: "API",
				pagegen.APIPackageKey:    "com.example.api",
			},
			expected: pagegen.Options{APIPackage: "com.example.api", Mode: pagegen.ModeAPI},
		},
		{
			name:      "missing mode",
			args:      map[string]string{pagegen.PagesPackageKey: "com.example.pages"},
			expectErr: true,
		},
		{
			name:      "unknown mode",
			args:      map[string]string{pagegen.ProcessorModeKey: "BACKEND"},
			expectErr: true,
		},
		{
			name:      "frontend without pages package",
			args:      map[string]string{pagegen.ProcessorModeKey: "FRONTEND", pagegen.APIPackageKey: "com.example.api"},
			expectErr: true,
		},
		{
			name:      "api without api package",
			args:      map[string]string{pagegen.ProcessorModeKey: "API", pagegen.PagesPackageKey: "com.example.pages"},
			expectErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := pagegen.ParseOptions(tt.args)
			if tt.expectErr {
				assert.ErrorIs(t, err, pagegen.ErrInvalidOptions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, opts)
			assert.Equal(t, tt.args, opts.Args())
		})
	}
}

func TestModeManifestFile(t *testing.T) {
	assert.Equal(t, "frontend.json", pagegen.ModeFrontend.ManifestFile())
	assert.Equal(t, "api.json", pagegen.ModeAPI.ManifestFile())
	assert.Equal(t, "FRONTEND", pagegen.ModeFrontend.String())
	assert.Equal(t, "API", pagegen.ModeAPI.String())

	m, err := pagegen.ParseMode(" frontend ")
	require.NoError(t, err)
	assert.Equal(t, pagegen.ModeFrontend, m)
}
