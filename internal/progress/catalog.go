package progress

import (
	"context"
	"fmt"
)

// Catalog narrows the registry to what a course actually contains.
type Catalog struct {
	registry Registry
	store    CourseStore
}

// NewCatalog wires the registry to a course store.
func NewCatalog(registry Registry, store CourseStore) *Catalog {
	return &Catalog{registry: registry, store: store}
}

// Registry exposes the descriptor table the catalog was built with.
func (c *Catalog) Registry() Registry {
	return c.registry
}

// ModulesInUse lists, in registry order, the types installed on the host
// that have at least one instance in the course.
func (c *Catalog) ModulesInUse(ctx context.Context, courseID uint) ([]string, error) {
	inUse := make([]string, 0, c.registry.Len())
	for _, name := range c.registry.Names() {
		present, err := c.store.HasInstances(ctx, name, courseID)
		if err != nil {
			return nil, fmt.Errorf("check %s instances: %w", name, err)
		}
		if present {
			inUse = append(inUse, name)
		}
	}
	return inUse, nil
}

// Outline indexes a course's modules and section positions.
type Outline struct {
	modules   map[string]CourseModule
	positions map[uint]outlinePosition
	sections  map[uint]int
}

type outlinePosition struct {
	section  int
	position int
}

// LoadOutline reads course modules and sections once per evaluation.
func (c *Catalog) LoadOutline(ctx context.Context, courseID uint) (Outline, error) {
	modules, err := c.store.CourseModules(ctx, courseID)
	if err != nil {
		return Outline{}, fmt.Errorf("load course modules: %w", err)
	}
	sections, err := c.store.Sections(ctx, courseID)
	if err != nil {
		return Outline{}, fmt.Errorf("load course sections: %w", err)
	}

	outline := Outline{
		modules:   make(map[string]CourseModule, len(modules)),
		positions: make(map[uint]outlinePosition, len(modules)),
		sections:  make(map[uint]int, len(sections)),
	}
	for _, module := range modules {
		outline.modules[InstanceKey(module.ModuleName, module.Instance)] = module
	}
	for _, section := range sections {
		outline.sections[section.ID] = section.Number
		for index, cmID := range section.Sequence {
			outline.positions[cmID] = outlinePosition{section: section.Number, position: index}
		}
	}
	return outline, nil
}

// Module finds the course module of an instance.
func (o Outline) Module(typeName string, instanceID uint) (CourseModule, bool) {
	module, ok := o.modules[InstanceKey(typeName, instanceID)]
	return module, ok
}

// Instances enumerates a type's activities in the course, ordered by name.
// The due value is read only when the type declares a deadline field that
// exists on this installation. Instances without a course module are skipped.
func (c *Catalog) Instances(ctx context.Context, typeName string, courseID uint, outline Outline) ([]ActivityInstance, error) {
	descriptor, ok := c.registry.Get(typeName)
	if !ok {
		return nil, nil
	}

	dueField := ""
	if descriptor.HasDeadline() && c.store.HasField(ctx, typeName, descriptor.DeadlineField) {
		dueField = descriptor.DeadlineField
	}

	rows, err := c.store.ListInstances(ctx, typeName, dueField, courseID)
	if err != nil {
		return nil, fmt.Errorf("list %s instances: %w", typeName, err)
	}

	instances := make([]ActivityInstance, 0, len(rows))
	for _, row := range rows {
		module, ok := outline.Module(typeName, row.ID)
		if !ok {
			continue
		}
		position, placed := outline.positions[module.ID]
		if !placed {
			position = outlinePosition{section: outline.sections[module.SectionID], position: len(outline.positions)}
		}
		instances = append(instances, ActivityInstance{
			Type:     typeName,
			ID:       row.ID,
			Name:     row.Name,
			Due:      row.Due,
			Module:   module,
			Section:  position.section,
			Position: position.position,
		})
	}
	return instances, nil
}
