// Package compose renders a dockman project as a compose-spec document.
package compose

import (
	"fmt"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"

	"github.com/fgrehm/dockman/internal/engine"
	"github.com/fgrehm/dockman/internal/project"
)

// Export converts containers into a compose project. Every dependency of an
// exported container must be exported too; callers pass a chain or a chain
// union to guarantee it.
func Export(p *project.Project, containers []*project.Container) (*types.Project, error) {
	included := make(map[string]bool, len(containers))
	for _, c := range containers {
		included[c.Name] = true
	}

	cp := &types.Project{
		Name:       loader.NormalizeProjectName(p.Name),
		WorkingDir: p.Dir,
		Services:   make(types.Services, len(containers)),
	}

	for _, c := range containers {
		for _, dep := range c.Dependencies() {
			if !included[dep] {
				return nil, fmt.Errorf("exporting %s: dependency %q is not exported", c.Name, dep)
			}
		}

		svc, err := service(c)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", c.Name, err)
		}
		cp.Services[c.Name] = svc

		for _, v := range svc.Volumes {
			if v.Type != types.VolumeTypeVolume {
				continue
			}
			if cp.Volumes == nil {
				cp.Volumes = make(types.Volumes)
			}
			// Named volumes are shared with containers dockman runs itself,
			// so compose must not prefix them with the project name.
			cp.Volumes[v.Source] = types.VolumeConfig{Name: v.Source, External: true}
		}
	}
	return cp, nil
}

// Marshal renders a compose project as YAML.
func Marshal(cp *types.Project) ([]byte, error) {
	return cp.MarshalYAML()
}

func service(c *project.Container) (types.ServiceConfig, error) {
	svc := types.ServiceConfig{
		Name:          c.Name,
		ContainerName: c.QualifiedName(),
		Image:         c.Image,
		Labels: types.Labels{
			engine.LabelProject:   c.Project,
			engine.LabelContainer: c.Name,
		},
		Environment: types.MappingWithEquals{},
	}

	for _, p := range c.Ports {
		ports, err := types.ParsePortConfig(p.Host + ":" + p.Container)
		if err != nil {
			return svc, fmt.Errorf("port %s:%s: %w", p.Host, p.Container, err)
		}
		svc.Ports = append(svc.Ports, ports...)
	}

	for _, v := range c.Volumes {
		typ := types.VolumeTypeBind
		if !strings.ContainsAny(v.Host, `/\`) {
			typ = types.VolumeTypeVolume
		}
		svc.Volumes = append(svc.Volumes, types.ServiceVolumeConfig{
			Type:   typ,
			Source: v.Host,
			Target: v.Container,
		})
	}

	for _, kv := range c.Env {
		k, v, _ := strings.Cut(kv, "=")
		v = escape(v)
		svc.Environment[k] = &v
	}
	name := c.QualifiedName()
	svc.Environment["container_name"] = &name

	svc.VolumesFrom = append(svc.VolumesFrom, c.VolumesFrom...)
	for _, l := range c.Links {
		svc.Links = append(svc.Links, l.Target+":"+l.Alias)
	}

	if deps := c.Dependencies(); len(deps) > 0 {
		svc.DependsOn = make(types.DependsOnConfig, len(deps))
		for _, d := range deps {
			svc.DependsOn[d] = types.ServiceDependency{
				Condition: types.ServiceConditionStarted,
				Required:  true,
			}
		}
	}

	for _, arg := range c.Cmd {
		svc.Command = append(svc.Command, escape(arg))
	}
	return svc, nil
}

// escape protects values from compose variable interpolation.
func escape(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
