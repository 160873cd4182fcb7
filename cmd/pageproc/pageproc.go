package main

import (
	"os"
	"strings"

	"github.com/Alia5/pageproc/internal/config"
	"github.com/Alia5/pageproc/internal/configpaths"
	"github.com/Alia5/pageproc/internal/log"

	_ "github.com/Alia5/pageproc/internal/registry" // Register all processors

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {

	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("pageproc"),
		kong.Description("Annotation processor for page and API packages"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File, cli.Log.Format)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	var artifacts log.ArtifactLogger
	if cli.Log.ArtifactFile != "" {
		f, err := os.OpenFile(cli.Log.ArtifactFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open artifact log file", "file", cli.Log.ArtifactFile, "error", err)
			artifacts = log.NewArtifactLogger(nil)
		} else {
			artifacts = log.NewArtifactLogger(f)
			closeFiles = append(closeFiles, f)
		}
	} else if cli.Log.Level == "trace" {
		artifacts = log.NewArtifactLogger(os.Stdout)
	} else {
		artifacts = log.NewArtifactLogger(nil)
	}

	ctx.Bind(logger)
	ctx.BindTo(artifacts, (*log.ArtifactLogger)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("PAGEPROC_CONFIG"); v != "" {
		return v
	}
	return ""
}
