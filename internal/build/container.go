package build

import (
	"fmt"
	"sort"
	"sync"
)

// container is a live named collection: ConfigureEach actions apply to the
// matching items already present and to every matching item added later.
type container[T any] struct {
	kind    string
	nameOf  func(T) string
	mu      sync.Mutex
	items   map[string]T
	order   []string
	actions []containerAction[T]
}

type containerAction[T any] struct {
	pred   func(T) bool
	action func(T) error
}

func newContainer[T any](kind string, nameOf func(T) string) *container[T] {
	return &container[T]{kind: kind, nameOf: nameOf, items: make(map[string]T)}
}

func (c *container[T]) add(item T) error {
	name := c.nameOf(item)
	c.mu.Lock()
	if _, exists := c.items[name]; exists {
		c.mu.Unlock()
		return fmt.Errorf("%s %q already exists", c.kind, name)
	}
	c.items[name] = item
	c.order = append(c.order, name)
	actions := append([]containerAction[T](nil), c.actions...)
	c.mu.Unlock()

	for _, a := range actions {
		if a.pred(item) {
			if err := a.action(item); err != nil {
				return fmt.Errorf("configure %s %q: %w", c.kind, name, err)
			}
		}
	}
	return nil
}

func (c *container[T]) get(name string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[name]
	return item, ok
}

func (c *container[T]) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]string(nil), c.order...)
	sort.Strings(out)
	return out
}

func (c *container[T]) configureEach(pred func(T) bool, action func(T) error) error {
	c.mu.Lock()
	c.actions = append(c.actions, containerAction[T]{pred: pred, action: action})
	var matching []T
	for _, name := range c.order {
		if item := c.items[name]; pred(item) {
			matching = append(matching, item)
		}
	}
	c.mu.Unlock()

	for _, item := range matching {
		if err := action(item); err != nil {
			return fmt.Errorf("configure %s %q: %w", c.kind, c.nameOf(item), err)
		}
	}
	return nil
}

// Matching is a live filtered view of a container.
type Matching[T any] struct {
	c    *container[T]
	pred func(T) bool
}

// ConfigureEach runs action for every current and future item of the view.
// Errors from items already present are returned immediately; errors from
// later items are returned by the call that adds them.
func (m Matching[T]) ConfigureEach(action func(T) error) error {
	return m.c.configureEach(m.pred, action)
}
