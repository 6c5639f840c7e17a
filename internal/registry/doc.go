// Package registry provides the central "glue" for the module system.
//
// The Registry maps the string identifiers used in suite manifests (a unit's
// `handler = "print"` or `expect_failure = "assertion"`) to the compiled Go
// handlers and failure kinds that implement them. Modules register
// themselves at startup; manifests are checked against the registry while
// they load, so a suite that names an unknown handler or passes arguments a
// handler does not declare never reaches execution.
package registry
