// Package pagegen implements the page processor: for every function marked
// with core.PageAnnotation it generates a "<Name>Copy" page in the same
// package and writes a manifest of all pages.
package pagegen

import (
	"context"
	"log/slog"

	"github.com/Alia5/pageproc/core"
	"github.com/Alia5/pageproc/internal/processing"
)

// Coordinate is the dependency coordinate the page processor registers under.
const Coordinate = "github.com/Alia5/pageproc/internal/pagegen"

func init() {
	processing.Register(Coordinate, func(env processing.Environment) (processing.Processor, error) {
		opts, err := ParseOptions(env.Options)
		if err != nil {
			return nil, err
		}
		return NewProcessor(env.CodeGenerator, opts, NewRoundState(), env.Logger), nil
	})
}

// RoundState tracks whether the first round of one target compilation has
// completed. Generated pages carry the page annotation themselves, so only
// the first round may generate.
type RoundState struct {
	firstRoundDone bool
}

// NewRoundState returns the state for a fresh compilation.
func NewRoundState() *RoundState {
	return &RoundState{}
}

// FirstRound reports whether the first round has not completed yet.
func (s *RoundState) FirstRound() bool { return !s.firstRoundDone }

func (s *RoundState) complete() { s.firstRoundDone = true }

// Processor generates page copies.
type Processor struct {
	codeGen processing.CodeGenerator
	opts    Options
	state   *RoundState
	logger  *slog.Logger

	generated []*Artifact
}

// NewProcessor returns a processor. state must not be shared between compilations.
func NewProcessor(codeGen processing.CodeGenerator, opts Options, state *RoundState, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{codeGen: codeGen, opts: opts, state: state, logger: logger}
}

// Generated returns the artifacts emitted so far.
func (p *Processor) Generated() []*Artifact {
	return append([]*Artifact(nil), p.generated...)
}

// Process handles every page in the first round and does nothing afterwards.
// It never defers symbols.
func (p *Processor) Process(ctx context.Context, resolver processing.Resolver) ([]processing.Symbol, error) {
	if !p.state.FirstRound() {
		return nil, nil
	}

	symbols, err := resolver.SymbolsWithAnnotation(core.PageAnnotation)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Resolved page symbols", "count", len(symbols), "mode", p.opts.Mode)

	manifest := &Manifest{Mode: p.opts.Mode.String(), Package: p.opts.Package()}
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.visit(sym, manifest); err != nil {
			return nil, err
		}
	}

	inputs, err := resolver.Files()
	if err != nil {
		return nil, err
	}
	if err := writeManifest(p.codeGen, p.opts.Mode, manifest, inputs); err != nil {
		return nil, err
	}

	p.state.complete()
	return nil, nil
}

func (p *Processor) visit(sym processing.Symbol, m *Manifest) error {
	switch sym.Kind {
	case processing.KindFunction:
		return p.visitFunction(sym, m)
	case processing.KindMethod, processing.KindType, processing.KindVar, processing.KindConst:
		p.logger.Debug("Ignoring page annotation on non-function", "symbol", sym.QualifiedName(), "kind", sym.Kind)
		return nil
	default:
		return nil
	}
}

func (p *Processor) visitFunction(sym processing.Symbol, m *Manifest) error {
	a, err := RenderCopy(sym)
	if err != nil {
		return err
	}
	if err := writeArtifact(p.codeGen, a); err != nil {
		return err
	}
	p.generated = append(p.generated, a)
	p.logger.Debug("Generated page copy", "source", sym.QualifiedName(), "copy", a.QualifiedName)

	root := p.opts.Package()
	for _, e := range []struct {
		pkg, name string
		generated bool
	}{
		{sym.Package, sym.Name, false},
		{a.Package, a.Name, true},
	} {
		route, ok := Route(root, e.pkg, e.name)
		if !ok && !e.generated {
			p.logger.Warn("Page is outside the configured package", "page", e.pkg+"."+e.name, "package", root)
		}
		m.add(ManifestEntry{
			QualifiedName: e.pkg + "." + e.name,
			Route:         route,
			File:          sym.File.Path,
			Generated:     e.generated,
		})
	}
	return nil
}
