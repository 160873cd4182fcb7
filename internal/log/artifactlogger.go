package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ArtifactLogger dumps generated artifacts with optional file output.
type ArtifactLogger interface {
	Log(path string, data []byte)
}

// artifactLogger implements ArtifactLogger with thread-safe output.
type artifactLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewArtifactLogger creates a new ArtifactLogger. If writer is nil, returns a no-op logger.
func NewArtifactLogger(w io.Writer) ArtifactLogger {
	return &artifactLogger{w: w}
}

// Log writes a header line with timestamp, path and size followed by the content.
func (a *artifactLogger) Log(path string, data []byte) {
	if a.w == nil {
		return
	}

	header := fmt.Sprintf("%s ==> %s (%d bytes)\n",
		time.Now().Format("2006/01/02 15:04:05"),
		path,
		len(data))

	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = io.WriteString(a.w, header)
	_, _ = a.w.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, _ = io.WriteString(a.w, "\n")
	}
}
