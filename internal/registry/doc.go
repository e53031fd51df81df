// Package registry provides the process-wide declaration tables shared by
// every run context.
//
// The Registry stores the compiled units (scripts) keyed by normalized path,
// the application-level functions and types, the application-level
// constants, and the catalog of Go entry points and callables that manifests
// refer to by name.
//
// During process startup the registry is populated from the manifest model
// (Bootstrap) after a parity check between the manifests and the registered
// Go code (ValidateRegistry). After that it is read-mostly: run contexts read
// shared entries concurrently and keep their own declarations in an Overlay.
package registry
