// Package config holds the command line surface of pageproc.
package config

import "github.com/Alia5/pageproc/internal/cmd"

// Log configures logging for every command.
type Log struct {
	Level        string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error" env:"PAGEPROC_LOG_LEVEL"`
	File         string `help:"Also write logs to this file" env:"PAGEPROC_LOG_FILE"`
	Format       string `help:"Log output format" default:"auto" enum:"auto,text,json" env:"PAGEPROC_LOG_FORMAT"`
	ArtifactFile string `help:"Dump every generated artifact to this file" env:"PAGEPROC_LOG_ARTIFACT_FILE"`
}

// CLI is the root kong command.
type CLI struct {
	ConfigFile string `name:"config" help:"Path to a pageproc config file" type:"path" env:"PAGEPROC_CONFIG"`
	Log        Log    `embed:"" prefix:"log."`

	Build   cmd.Build         `cmd:"" help:"Run the page processor for the project's targets"`
	Symbols cmd.Symbols       `cmd:"" help:"List annotated symbols of a project"`
	Config  cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
