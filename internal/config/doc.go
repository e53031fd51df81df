// Package config defines the format-agnostic model of the bootstrap
// manifest, along with the Loader interface that produces it.
//
// The manifest describes every compiled unit known to the process: its
// normalized path, the name of its Go entry point, the functions, types and
// constants it declares, and the steps its entry point performs. The
// `config.Model` is the single source of truth for registry bootstrap.
// Concrete loaders, such as the HCL one, live in separate packages.
package config
