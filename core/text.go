package core

import "sync"

var (
	captureMu sync.Mutex

	nodesMu sync.Mutex
	nodes   []string
	active  bool
)

// Text emits a text node. Outside of Capture it does nothing.
func Text(value string) {
	nodesMu.Lock()
	defer nodesMu.Unlock()
	if !active {
		return
	}
	nodes = append(nodes, value)
}

// Capture runs fn and returns the text nodes it emitted, in order.
// Captures are serialized.
func Capture(fn func()) []string {
	captureMu.Lock()
	defer captureMu.Unlock()

	nodesMu.Lock()
	nodes = nil
	active = true
	nodesMu.Unlock()

	defer func() {
		nodesMu.Lock()
		active = false
		nodes = nil
		nodesMu.Unlock()
	}()

	fn()

	nodesMu.Lock()
	out := append([]string(nil), nodes...)
	nodesMu.Unlock()
	return out
}
