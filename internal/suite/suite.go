// Package suite defines how test units are found and bound to runnable
// payloads. Discovery and definition are pluggable; the binding semantics
// (setup and teardown hooks, ignored units, expected failures) are shared.
package suite

import (
	"context"
	"fmt"

	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/plan"
)

// GroupDefinition is a discovered group, before its units are resolved.
type GroupDefinition struct {
	Description description.Description
	// Source locates the definition, typically a file path.
	Source string
}

// Discoverer finds the groups available at a location.
type Discoverer interface {
	Discover(ctx context.Context, location string) ([]GroupDefinition, error)
}

// Definer resolves the units of a discovered group, bound to payloads.
type Definer interface {
	Units(ctx context.Context, group GroupDefinition) ([]plan.Unit, error)
}

// Collect discovers every group at location and resolves its units. Any
// failure aborts collection, so no plan is built from a partial suite.
func Collect(ctx context.Context, d Discoverer, def Definer, location string) ([]plan.Group, error) {
	logger := ctxlog.FromContext(ctx)

	found, err := d.Discover(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("discovering %s: %w", location, err)
	}

	groups := make([]plan.Group, 0, len(found))
	for _, g := range found {
		units, err := def.Units(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("defining group %s: %w", g.Description.Name, err)
		}
		logger.Debug("Collected group.", "group", g.Description.Name, "units", len(units), "source", g.Source)
		groups = append(groups, plan.Group{Description: g.Description, Units: units})
	}
	return groups, nil
}
