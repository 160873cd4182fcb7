package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/pageproc/core"
)

func TestCapture(t *testing.T) {
	got := core.Capture(func() {
		core.Text("Copy of HomePage")
		core.Text("second")
	})
	assert.Equal(t, []string{"Copy of HomePage", "second"}, got)

	// Outside a capture Text is dropped.
	core.Text("ignored")
	assert.Empty(t, core.Capture(func() {}))
}
