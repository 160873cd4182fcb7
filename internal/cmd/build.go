package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/pageproc/internal/build"
	"github.com/Alia5/pageproc/internal/log"
)

type Build struct {
	ProjectFlags `embed:""`

	Target    []string `help:"Only build these targets" sep:","`
	KeepGoing bool     `help:"Keep building independent targets after a failure" env:"PAGEPROC_KEEP_GOING"`
	MaxRounds int      `help:"Maximum processing rounds per target" default:"100" env:"PAGEPROC_MAX_ROUNDS"`
}

// Run is called by Kong when the build command is executed.
func (b *Build) Run(logger *slog.Logger, artifacts log.ArtifactLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return b.Execute(ctx, logger, artifacts)
}

func (b *Build) Execute(ctx context.Context, logger *slog.Logger, artifacts log.ArtifactLogger) error {
	p, err := b.load(logger)
	if err != nil {
		return err
	}
	p.KeepGoing = b.KeepGoing
	p.Artifacts = artifacts

	targets, err := selectTargets(p, b.Target)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		if task, ok := p.Tasks().Named(t.ProcessTaskName()); ok {
			if pt, ok := task.(*build.ProcessTask); ok {
				pt.MaxRounds = b.MaxRounds
			}
		}
		names = append(names, t.ProcessResourcesTaskName())
	}

	logger.Info("Building project", "project", p.Name, "targets", len(targets))
	if err := p.Execute(ctx, names...); err != nil {
		return err
	}

	for _, t := range targets {
		task, _ := p.Tasks().Named(t.ProcessResourcesTaskName())
		rt, ok := task.(*build.ProcessResourcesTask)
		if !ok {
			continue
		}
		var generated int
		if pt, ok := p.Tasks().Named(t.ProcessTaskName()); ok {
			if res := pt.(*build.ProcessTask).Result(); res != nil {
				generated = len(res.Generated)
			}
		}
		logger.Info("Target built",
			"target", t.Name,
			"generated", generated,
			"resources", rt.Packaged(),
			"dir", rt.DestinationDir)
	}
	return nil
}
