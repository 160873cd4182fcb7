package pagegen

import (
	"errors"
	"fmt"
	"strings"
)

// Keys of the key/value channel between the build and the processor.
const (
	PagesPackageKey  = "pageproc.pagesPackage"
	APIPackageKey    = "pageproc.apiPackage"
	ProcessorModeKey = "pageproc.processorMode"
)

// ErrInvalidOptions is returned for incomplete or unknown processor options.
var ErrInvalidOptions = errors.New("invalid processor options")

// Mode selects which package the processor resolves pages against and which
// manifest it writes.
type Mode int

const (
	ModeAPI Mode = iota
	ModeFrontend
)

func (m Mode) String() string {
	switch m {
	case ModeAPI:
		return "API"
	case ModeFrontend:
		return "FRONTEND"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "API":
		return ModeAPI, nil
	case "FRONTEND":
		return ModeFrontend, nil
	default:
		return 0, fmt.Errorf("%w: unknown processor mode %q", ErrInvalidOptions, s)
	}
}

// ManifestFile is the name of the resource the processor writes in this mode.
func (m Mode) ManifestFile() string {
	switch m {
	case ModeFrontend:
		return "frontend.json"
	default:
		return "api.json"
	}
}

// Options is the typed form of the processor configuration.
type Options struct {
	PagesPackage string
	APIPackage   string
	Mode         Mode
}

// Validate checks that the package the mode depends on is set.
func (o Options) Validate() error {
	switch o.Mode {
	case ModeFrontend:
		if o.PagesPackage == "" {
			return fmt.Errorf("%w: %s mode requires a pages package", ErrInvalidOptions, o.Mode)
		}
	case ModeAPI:
		if o.APIPackage == "" {
			return fmt.Errorf("%w: %s mode requires an api package", ErrInvalidOptions, o.Mode)
		}
	default:
		return fmt.Errorf("%w: unknown mode %s", ErrInvalidOptions, o.Mode)
	}
	return nil
}

// Package returns the package the current mode resolves against.
func (o Options) Package() string {
	if o.Mode == ModeFrontend {
		return o.PagesPackage
	}
	return o.APIPackage
}

// Args renders the options as key/value arguments. Empty packages are omitted.
func (o Options) Args() map[string]string {
	args := map[string]string{ProcessorModeKey: o.Mode.String()}
	if o.PagesPackage != "" {
		args[PagesPackageKey] = o.PagesPackage
	}
	if o.APIPackage != "" {
		args[APIPackageKey] = o.APIPackage
	}
	return args
}

// ParseOptions reads options from key/value arguments and validates them.
func ParseOptions(args map[string]string) (Options, error) {
	rawMode, ok := args[ProcessorModeKey]
	if !ok {
		return Options{}, fmt.Errorf("%w: missing %s", ErrInvalidOptions, ProcessorModeKey)
	}
	mode, err := ParseMode(rawMode)
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		PagesPackage: args[PagesPackageKey],
		APIPackage:   args[APIPackageKey],
		Mode:         mode,
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// ResolvePackageShortcut expands a package token against the project group.
//
//	"."          -> group
//	"./sub/dir"  -> group + "/sub/dir"
//	".sub"       -> group + ".sub"
//
// Any other token is returned unchanged.
func ResolvePackageShortcut(group, token string) string {
	switch {
	case token == ".":
		return group
	case strings.HasPrefix(token, "./"):
		return strings.TrimSuffix(group+"/"+strings.TrimPrefix(token, "./"), "/")
	case strings.HasPrefix(token, "."):
		return strings.TrimSuffix(group+token, ".")
	default:
		return token
	}
}
