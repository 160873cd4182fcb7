package build

import (
	"fmt"
	"strings"

	"github.com/Alia5/pageproc/internal/processing"
)

// Platform is the kind of compile target.
type Platform int

const (
	// PlatformServer compiles server-side code.
	PlatformServer Platform = iota
	// PlatformScript compiles browser code.
	PlatformScript
)

func (p Platform) String() string {
	switch p {
	case PlatformServer:
		return "server"
	case PlatformScript:
		return "script"
	default:
		return fmt.Sprintf("Platform(%d)", int(p))
	}
}

// ParsePlatform parses "server" or "script".
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "server", "jvm", "bytecode":
		return PlatformServer, nil
	case "script", "js", "browser":
		return PlatformScript, nil
	default:
		return 0, fmt.Errorf("unknown target platform %q", s)
	}
}

// Target is one compilation output of a project.
type Target struct {
	Name         string
	Platform     Platform
	Sources      []processing.SourceRoot
	ResourceDirs []string
}

// CapitalizedName returns the target name with an upper-case first letter.
func (t *Target) CapitalizedName() string {
	if t.Name == "" {
		return ""
	}
	return strings.ToUpper(t.Name[:1]) + t.Name[1:]
}

// DependencyConfigurationName is the configuration holding processor
// coordinates for this target.
func (t *Target) DependencyConfigurationName() string {
	return "pageproc" + t.CapitalizedName()
}

// ProcessTaskName is the task running annotation processing for this target.
func (t *Target) ProcessTaskName() string {
	return "processPages" + t.CapitalizedName()
}

// ProcessResourcesTaskName is the task assembling this target's packaged resources.
func (t *Target) ProcessResourcesTaskName() string {
	return t.Name + "ProcessResources"
}
