// Package processing runs annotation processors over Go sources in rounds.
package processing

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Processor is invoked once per processing round.
//
// Process returns the symbols it could not handle yet; they are offered
// again in the next round.
type Processor interface {
	Process(ctx context.Context, resolver Resolver) (deferred []Symbol, err error)
}

// Finisher is implemented by processors that need a callback after the last round.
type Finisher interface {
	Finish(ctx context.Context) error
}

// Environment is handed to a Provider when a processor is created for one
// target compilation.
type Environment struct {
	CodeGenerator CodeGenerator
	Options       map[string]string
	Logger        *slog.Logger
}

// Provider creates a processor for one target compilation.
type Provider func(env Environment) (Processor, error)

var (
	providers   = make(map[string]Provider)
	providersMu sync.RWMutex
)

// Register registers a processor provider under a dependency coordinate.
// This should be called from processor package init() functions.
func Register(coordinate string, p Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[coordinate] = p
}

// Lookup returns the provider registered for coordinate, or nil.
func Lookup(coordinate string) Provider {
	providersMu.RLock()
	defer providersMu.RUnlock()
	return providers[coordinate]
}

// Registered lists all registered coordinates, sorted.
func Registered() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	out := make([]string, 0, len(providers))
	for c := range providers {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
