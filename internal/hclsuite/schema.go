// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the HCL schema of a suite manifest.
//
// A manifest declares one or more `group` blocks. Each group owns its units
// and the hooks shared by them:
//
//	group "billing.Invoice" {
//	  before "seed" { handler = "print" }
//	  after "cleanup" { handler = "print" }
//
//	  unit "totals" {
//	    handler        = "fail"
//	    arguments      { message = "rounding" }
//	    expect_failure = "assertion"
//	    runs           = 2
//	    parameters     = ["eur", 2]
//	  }
//	}
//
// A unit's full name is its group's name joined with its label, so the unit
// above runs as `billing.Invoice.totals`.

package hclsuite

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot is the top-level structure of a manifest file.
type fileRoot struct {
	Groups []*groupBlock `hcl:"group,block"`
	Remain hcl.Body      `hcl:",remain"`
}

// groupBlock represents a `group` block.
type groupBlock struct {
	Name   string       `hcl:"name,label"`
	Ignore bool         `hcl:"ignore,optional"`
	Before []*hookBlock `hcl:"before,block"`
	After  []*hookBlock `hcl:"after,block"`
	Units  []*unitBlock `hcl:"unit,block"`

	// source is the file the group was declared in.
	source string
}

// hookBlock represents a `before` or `after` block.
type hookBlock struct {
	Name      string     `hcl:"name,label"`
	Handler   string     `hcl:"handler"`
	Arguments *argsBlock `hcl:"arguments,block"`
}

// unitBlock represents a `unit` block.
type unitBlock struct {
	Name          string     `hcl:"name,label"`
	Handler       string     `hcl:"handler"`
	Arguments     *argsBlock `hcl:"arguments,block"`
	ExpectFailure string     `hcl:"expect_failure,optional"`
	Ignore        bool       `hcl:"ignore,optional"`
	Runs          *int       `hcl:"runs,optional"`
	Parameters    *cty.Value `hcl:"parameters,optional"`
}

// argsBlock represents the free-form `arguments` block of a unit or hook.
type argsBlock struct {
	Body hcl.Body `hcl:",remain"`
}
