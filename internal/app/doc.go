// Package app contains the core application logic. It defines the App
// struct and its configuration, builds the registry from the manifests and
// the compiled-in modules, and runs entry units in fresh run contexts,
// decoupled from any specific entrypoint like a CLI.
package app
