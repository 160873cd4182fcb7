package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultMaxRounds bounds the number of rounds a Host runs.
const DefaultMaxRounds = 100

var (
	// ErrTooManyRounds is returned when processors keep generating sources
	// round after round.
	ErrTooManyRounds = errors.New("processing did not reach a fixed point")
	// ErrUnresolvedSymbols is returned when symbols are still deferred after
	// a round that generated nothing.
	ErrUnresolvedSymbols = errors.New("unable to process deferred symbols")
)

// RoundStats describes one processing round.
type RoundStats struct {
	Round    int
	Inputs   int
	NewFiles []string
	Deferred int
}

// Host drives processors round by round until nothing new is generated.
type Host struct {
	processors []Processor
	resolver   *SourceResolver
	codeGen    CodeGenerator
	logger     *slog.Logger

	MaxRounds int
}

// NewHost returns a host. The first round sees resolver; each later round
// only sees the Go sources generated in the previous round.
func NewHost(processors []Processor, resolver *SourceResolver, codeGen CodeGenerator, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Host{
		processors: processors,
		resolver:   resolver,
		codeGen:    codeGen,
		logger:     logger,
		MaxRounds:  DefaultMaxRounds,
	}
}

// Run executes rounds until a round generates no new source and defers nothing.
func (h *Host) Run(ctx context.Context) ([]RoundStats, error) {
	var (
		stats    []RoundStats
		resolver = h.resolver
		deferred = make([][]Symbol, len(h.processors))
	)

	for round := 1; ; round++ {
		if round > h.MaxRounds {
			return stats, fmt.Errorf("%w after %d rounds", ErrTooManyRounds, h.MaxRounds)
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		inputs, err := resolver.Files()
		if err != nil {
			return stats, err
		}
		before := len(h.codeGen.GeneratedFiles())

		deferredCount := 0
		for i, p := range h.processors {
			d, err := p.Process(ctx, withDeferred(resolver, deferred[i]))
			if err != nil {
				return stats, fmt.Errorf("round %d: %w", round, err)
			}
			deferred[i] = d
			deferredCount += len(d)
		}

		newFiles := h.codeGen.GeneratedFiles()[before:]
		st := RoundStats{Round: round, Inputs: len(inputs), NewFiles: newFiles, Deferred: deferredCount}
		stats = append(stats, st)
		h.logger.Debug("Processing round complete",
			"round", round,
			"inputs", st.Inputs,
			"generated", len(newFiles),
			"deferred", deferredCount)

		newSources := goSources(newFiles)
		if len(newSources) == 0 {
			if deferredCount > 0 {
				return stats, fmt.Errorf("%w: %s", ErrUnresolvedSymbols, deferredNames(deferred))
			}
			break
		}
		resolver = h.resolver.Restrict(newSources, false)
	}

	for _, p := range h.processors {
		if f, ok := p.(Finisher); ok {
			if err := f.Finish(ctx); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

func goSources(files []string) []string {
	var out []string
	for _, f := range files {
		if strings.HasSuffix(f, ".go") {
			out = append(out, f)
		}
	}
	return out
}

func deferredNames(deferred [][]Symbol) string {
	var names []string
	for _, d := range deferred {
		for _, s := range d {
			names = append(names, s.QualifiedName())
		}
	}
	return strings.Join(names, ", ")
}

// deferredResolver adds deferred symbols back to a round's results.
type deferredResolver struct {
	Resolver
	deferred []Symbol
}

func withDeferred(r Resolver, deferred []Symbol) Resolver {
	if len(deferred) == 0 {
		return r
	}
	return &deferredResolver{Resolver: r, deferred: deferred}
}

func (r *deferredResolver) SymbolsWithAnnotation(name string) ([]Symbol, error) {
	out, err := r.Resolver.SymbolsWithAnnotation(name)
	if err != nil {
		return nil, err
	}
	for _, s := range r.deferred {
		if s.HasAnnotation(name) {
			out = append(out, s)
		}
	}
	return out, nil
}
