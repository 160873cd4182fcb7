// Package procsetup wires the page processor into the targets of a project.
package procsetup

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Alia5/pageproc/internal/build"
	"github.com/Alia5/pageproc/internal/pagegen"
)

// ApplyProcessorPlugin installs the processor extension on p.
func ApplyProcessorPlugin(p *build.Project) error {
	return p.Plugins().Apply(build.ProcessorPlugin{})
}

// SetProcessorMode sets the processor mode of target. The mode cannot change
// once set.
func SetProcessorMode(p *build.Project, target *build.Target, mode pagegen.Mode) error {
	return AddProcessorArguments(p, target, map[string]string{pagegen.ProcessorModeKey: mode.String()})
}

// ConfigureScript adds and configures the processor for a browser target.
func ConfigureScript(p *build.Project, target *build.Target, mode pagegen.Mode) error {
	if err := AddProcessorDependency(p, target); err != nil {
		return err
	}

	err := p.Tasks().Matching(func(t build.Task) bool {
		return t.Name() == target.ProcessTaskName()
	}).ConfigureEach(func(t build.Task) error {
		pt, ok := t.(*build.ProcessTask)
		if !ok {
			return fmt.Errorf("task %s is not a process task", t.Name())
		}
		opts := pagegen.Options{
			PagesPackage: pagegen.ResolvePackageShortcut(pt.Project().Group, p.Block.PagesPackage),
			Mode:         mode,
		}
		if err := opts.Validate(); err != nil {
			return err
		}
		return AddProcessorArguments(p, target, opts.Args())
	})
	if err != nil {
		return err
	}

	// Generated resources of browser targets are not packaged automatically,
	// so pull the manifest out of the process task's outputs.
	return p.Tasks().Matching(func(t build.Task) bool {
		return t.Name() == target.ProcessResourcesTaskName()
	}).ConfigureEach(func(t build.Task) error {
		rt, ok := t.(*build.ProcessResourcesTask)
		if !ok {
			return fmt.Errorf("task %s is not a process-resources task", t.Name())
		}
		pt, ok := p.Tasks().Named(target.ProcessTaskName())
		if !ok {
			return fmt.Errorf("task %s not found", target.ProcessTaskName())
		}
		process, ok := pt.(*build.ProcessTask)
		if !ok {
			return fmt.Errorf("task %s is not a process task", pt.Name())
		}
		rt.From(process.Outputs().Matching(mode.ManifestFile()))
		return nil
	})
}

// ConfigureBytecode adds and configures the processor for a server target.
func ConfigureBytecode(p *build.Project, target *build.Target) error {
	if err := AddProcessorDependency(p, target); err != nil {
		return err
	}

	return p.Tasks().Matching(func(t build.Task) bool {
		return t.Name() == target.ProcessTaskName()
	}).ConfigureEach(func(t build.Task) error {
		pt, ok := t.(*build.ProcessTask)
		if !ok {
			return fmt.Errorf("task %s is not a process task", t.Name())
		}
		opts := pagegen.Options{
			APIPackage: pagegen.ResolvePackageShortcut(pt.Project().Group, p.Block.APIPackage),
			Mode:       pagegen.ModeAPI,
		}
		if err := opts.Validate(); err != nil {
			return err
		}
		return AddProcessorArguments(p, target, opts.Args())
	})
}

// AddProcessorArguments registers key/value arguments for target. The
// processor plugin must have been applied first.
func AddProcessorArguments(p *build.Project, target *build.Target, args map[string]string) error {
	ext, err := p.ProcessorExtension()
	if err != nil {
		return fmt.Errorf("set processor arguments for %s: %w", target.Name, err)
	}
	var errs []error
	for _, key := range sortedKeys(args) {
		errs = append(errs, ext.Arg(target.Name, key, args[key]))
	}
	return errors.Join(errs...)
}

// AddProcessorDependency adds the project's processor to the dependency
// configuration of target. Calling it again for the same target is a no-op.
func AddProcessorDependency(p *build.Project, target *build.Target) error {
	coordinate := p.Block.ProcessorDependency
	if coordinate == "" {
		coordinate = pagegen.Coordinate
	}
	name := target.DependencyConfigurationName()
	return p.Configurations().Matching(func(c *build.Configuration) bool {
		return c.Name() == name
	}).ConfigureEach(func(c *build.Configuration) error {
		c.Add(coordinate)
		return nil
	})
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
