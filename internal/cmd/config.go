package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/Alia5/pageproc/internal/configpaths"
	"github.com/Alia5/pageproc/internal/project"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a project file or a configuration file for a command.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"What to generate: a project file or the config of a command" enum:"project,build,symbols"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// Run generates the template. Command configs are derived via reflection of
// the command structs and tags.
func (c *ConfigInit) Run() error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	var root any
	base := c.Command
	switch c.Command {
	case "project":
		root = project.Default()
		base = configpaths.ProjectFileBase
	case "build":
		root = buildMapFromStruct(reflect.TypeOf(Build{}))
	case "symbols":
		root = buildMapFromStruct(reflect.TypeOf(Symbols{}))
	default:
		return errors.New("unknown command; expected 'project', 'build' or 'symbols'")
	}

	dest := c.Output
	if dest == "" {
		dest = base + "." + format
	}

	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(root, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(root)
	case "toml":
		data, err = toml.Marshal(root)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	return nil
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

// buildMapFromStruct maps the flags of a command struct to their defaults,
// keyed by lowerCamel field name. Embedded flag groups are flattened.
func buildMapFromStruct(t reflect.Type) map[string]any {
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		if _, ok := f.Tag.Lookup("embed"); ok {
			for k, v := range buildMapFromStruct(f.Type) {
				out[k] = v
			}
			continue
		}
		if v := defaultValue(f.Type.Kind(), f.Tag.Get("default")); v != nil {
			out[strings.ToLower(f.Name[:1])+f.Name[1:]] = v
		}
	}
	return out
}

func defaultValue(kind reflect.Kind, def string) any {
	switch kind {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int:
		n, _ := strconv.Atoi(def)
		return n
	case reflect.Slice:
		if def == "" {
			return []string{}
		}
		return strings.Split(def, ",")
	default:
		return nil
	}
}
