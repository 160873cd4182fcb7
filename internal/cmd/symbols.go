package cmd

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/Alia5/pageproc/core"
	"github.com/Alia5/pageproc/internal/processing"
)

type Symbols struct {
	ProjectFlags `embed:""`

	Target     []string `help:"Only list symbols of these targets" sep:","`
	Annotation string   `help:"Qualified annotation name to look up" default:"github.com/Alia5/pageproc/core.Page"`
	Generated  bool     `help:"Include files marked as generated"`

	out io.Writer `kong:"-"`
}

// TargetSymbols is the output record of one target.
type TargetSymbols struct {
	Target  string              `json:"target"`
	Symbols []processing.Symbol `json:"symbols"`
}

// Run is called by Kong when the symbols command is executed.
func (s *Symbols) Run(logger *slog.Logger) error {
	p, err := s.load(logger)
	if err != nil {
		return err
	}
	targets, err := selectTargets(p, s.Target)
	if err != nil {
		return err
	}
	annotation := s.Annotation
	if annotation == "" {
		annotation = core.PageAnnotation
	}

	out := make([]TargetSymbols, 0, len(targets))
	for _, t := range targets {
		syms, err := processing.NewSourceResolver(t.Sources, !s.Generated).SymbolsWithAnnotation(annotation)
		if err != nil {
			return err
		}
		if syms == nil {
			syms = []processing.Symbol{}
		}
		logger.Debug("Resolved symbols", "target", t.Name, "count", len(syms))
		out = append(out, TargetSymbols{Target: t.Name, Symbols: syms})
	}

	w := s.out
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
