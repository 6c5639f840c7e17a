// Package hclsuite discovers test groups in HCL manifests and binds their
// units to registered handlers.
package hclsuite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/fsutil"
	"github.com/specialistvlad/unitgrid/internal/plan"
	"github.com/specialistvlad/unitgrid/internal/registry"
	"github.com/specialistvlad/unitgrid/internal/suite"
	"github.com/zclconf/go-cty/cty"
)

// ErrUnknownGroup is returned by Units for a group this suite did not
// discover.
var ErrUnknownGroup = errors.New("unknown group")

// Suite is the HCL-backed discovery and definition provider.
type Suite struct {
	registry *registry.Registry

	mu     sync.Mutex
	groups map[string]*groupBlock
}

// New creates a suite that binds handlers from reg.
func New(reg *registry.Registry) *Suite {
	return &Suite{
		registry: reg,
		groups:   make(map[string]*groupBlock),
	}
}

// Discover parses every .hcl file under location and returns the groups they
// declare, ordered by name. Ignored groups are left out.
func (s *Suite) Discover(ctx context.Context, location string) ([]suite.GroupDefinition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL suite discovery started.", "path", location)

	files, err := fsutil.FindFilesByExtension(location, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", location, err)
	}
	if len(files) == 0 {
		logger.Warn("No .hcl suite files found in path", "path", location)
	}

	parser := hclparse.NewParser()
	found := make(map[string]*groupBlock)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, g := range root.Groups {
			if _, err := description.ParseName(g.Name); err != nil {
				return nil, fmt.Errorf("%s: group %q: %w", file, g.Name, err)
			}
			if prev, dup := found[g.Name]; dup {
				return nil, fmt.Errorf("%s: group %q already declared in %s", file, g.Name, prev.source)
			}
			g.source = file
			found[g.Name] = g
		}
		logger.Debug("Successfully loaded groups from HCL file", "file", file, "groups", len(root.Groups))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var defs []suite.GroupDefinition
	for name, g := range found {
		if g.Ignore {
			logger.Info("Skipping ignored group.", "group", name)
			continue
		}
		s.groups[name] = g
		defs = append(defs, suite.GroupDefinition{
			Description: description.New(name, description.Group),
			Source:      g.source,
		})
	}
	slices.SortFunc(defs, func(a, b suite.GroupDefinition) int {
		return strings.Compare(a.Description.Name, b.Description.Name)
	})

	logger.Info("HCL suite discovered.", "files", len(files), "groups", len(defs))
	return defs, nil
}

// Units binds the units of a discovered group. A unit with `runs = N`
// yields N definitions.
func (s *Suite) Units(ctx context.Context, def suite.GroupDefinition) ([]plan.Unit, error) {
	s.mu.Lock()
	g, ok := s.groups[def.Description.Name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, def.Description.Name)
	}

	setup, err := s.hooks(g.Before)
	if err != nil {
		return nil, fmt.Errorf("%s: group %q: %w", g.source, g.Name, err)
	}
	teardown, err := s.hooks(g.After)
	if err != nil {
		return nil, fmt.Errorf("%s: group %q: %w", g.source, g.Name, err)
	}

	var units []plan.Unit
	for _, u := range g.Units {
		bound, err := s.unit(g, u, setup, teardown)
		if err != nil {
			return nil, fmt.Errorf("%s: unit %q: %w", g.source, description.Join(g.Name, u.Name), err)
		}
		units = append(units, bound...)
	}

	ctxlog.FromContext(ctx).Debug("Group units bound.", "group", g.Name, "units", len(units))
	return units, nil
}

func (s *Suite) unit(g *groupBlock, u *unitBlock, setup, teardown []suite.Hook) ([]plan.Unit, error) {
	name := description.Join(g.Name, u.Name)
	if _, err := description.ParseName(u.Name); err != nil {
		return nil, err
	}

	args, err := arguments(u.Arguments)
	if err != nil {
		return nil, err
	}
	body, err := s.registry.Bind(u.Handler, args)
	if err != nil {
		return nil, err
	}

	var expect error
	if u.ExpectFailure != "" {
		if expect, err = s.registry.Failure(u.ExpectFailure); err != nil {
			return nil, err
		}
	}

	runs := 1
	if u.Runs != nil {
		runs = *u.Runs
	}
	if runs < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d", runs)
	}

	var params []any
	if u.Parameters != nil {
		if params, err = parameters(*u.Parameters); err != nil {
			return nil, err
		}
	}

	payload := suite.Unit{
		Body:     body,
		Setup:    setup,
		Teardown: teardown,
		Expect:   expect,
		Ignore:   u.Ignore,
	}.Payload()

	out := make([]plan.Unit, 0, runs)
	for run := 1; run <= runs; run++ {
		out = append(out, plan.Unit{
			Description: description.NewRun(name, description.Unit, run, runs, params...),
			Payload:     payload,
		})
	}
	return out, nil
}

func (s *Suite) hooks(blocks []*hookBlock) ([]suite.Hook, error) {
	hooks := make([]suite.Hook, 0, len(blocks))
	for _, b := range blocks {
		args, err := arguments(b.Arguments)
		if err != nil {
			return nil, fmt.Errorf("hook %q: %w", b.Name, err)
		}
		fn, err := s.registry.Bind(b.Handler, args)
		if err != nil {
			return nil, fmt.Errorf("hook %q: %w", b.Name, err)
		}
		hooks = append(hooks, suite.Hook{Name: b.Name, Fn: fn})
	}
	return hooks, nil
}

// arguments evaluates an `arguments` block. Expressions may read environment
// variables through `env.NAME`.
func arguments(block *argsBlock) (map[string]cty.Value, error) {
	if block == nil {
		return nil, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{"env": environment()}}
	out := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}
		out[name] = v
	}
	return out, nil
}

func environment() cty.Value {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
