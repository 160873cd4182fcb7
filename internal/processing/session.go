package processing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Session processes the sources of one target compilation.
//
// Each Session owns its resolver, sink and processors; nothing is shared
// between sessions, so sessions for different targets may run concurrently.
type Session struct {
	Roots       []SourceRoot
	OutputDir   string
	Coordinates []string
	Options     map[string]string
	Logger      *slog.Logger
	Artifacts   ArtifactLogger
	MaxRounds   int
}

// Result summarizes a Session run.
type Result struct {
	UpToDate bool
	Rounds   []RoundStats
	// Generated lists files written by this run.
	Generated []string
	// Outputs lists every output currently valid for the target.
	Outputs []string
}

// IndexPath returns the location of the incremental index.
func (s *Session) IndexPath() string {
	return filepath.Join(s.OutputDir, IndexFileName)
}

// Run executes processing, skipping it when no input changed since the last run.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	roots := append(append([]SourceRoot(nil), s.Roots...), SourceOutputRoot(s.OutputDir))
	base := NewSourceResolver(roots, true)

	inputs, err := base.Files()
	if err != nil {
		return nil, err
	}
	current, err := Fingerprints(inputs)
	if err != nil {
		return nil, err
	}

	index, err := LoadIndex(s.IndexPath())
	if err != nil {
		return nil, err
	}
	config := ConfigFingerprint(s.Coordinates, s.Options)
	plan := index.Plan(current, config)
	if plan.UpToDate {
		logger.Info("Generated sources are up-to-date", "outputs", len(index.Outputs))
		return &Result{UpToDate: true, Outputs: index.OutputFiles()}, nil
	}
	logger.Debug("Incremental plan",
		"changed", len(plan.Changed),
		"invalidated", len(plan.Invalidated),
		"retained", len(plan.Retained),
		"fullScan", plan.FullScan,
		"configChanged", plan.ConfigChanged)

	for _, out := range plan.Invalidated {
		if err := os.Remove(out); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove stale output %s: %w", out, err)
		}
	}

	resolver := base
	if !plan.FullScan {
		resolver = base.Restrict(plan.Dirty, true)
	}

	codeGen := NewFileCodeGenerator(s.OutputDir, s.Artifacts)
	env := Environment{CodeGenerator: codeGen, Options: s.Options, Logger: logger}

	var processors []Processor
	for _, coord := range s.Coordinates {
		provider := Lookup(coord)
		if provider == nil {
			return nil, fmt.Errorf("no processor registered for %q (registered: %v)", coord, Registered())
		}
		p, err := provider(env)
		if err != nil {
			return nil, fmt.Errorf("create processor %s: %w", coord, err)
		}
		processors = append(processors, p)
	}

	host := NewHost(processors, resolver, codeGen, logger)
	if s.MaxRounds > 0 {
		host.MaxRounds = s.MaxRounds
	}
	rounds, err := host.Run(ctx)
	if err != nil {
		return nil, err
	}

	next := NewIndex()
	next.Config = config
	next.Inputs = current
	for _, out := range plan.Retained {
		next.Outputs[out] = index.Outputs[out]
	}
	for out, deps := range codeGen.Dependencies() {
		next.Outputs[out] = deps
	}
	if err := next.Save(s.IndexPath()); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}

	return &Result{
		Rounds:    rounds,
		Generated: codeGen.GeneratedFiles(),
		Outputs:   next.OutputFiles(),
	}, nil
}
