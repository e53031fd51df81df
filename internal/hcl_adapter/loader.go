// Package hcl_adapter implements config.Loader for HCL manifest files.
package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/declrt/internal/config"
	"github.com/vk/declrt/internal/ctxlog"
	"github.com/vk/declrt/internal/decl"
	"github.com/vk/declrt/internal/fsutil"
	"github.com/vk/declrt/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// DiagnosticsError is returned when manifests fail to parse, decode or pass
// declaration validation. Diags holds every error found.
type DiagnosticsError struct {
	Diags hcl.Diagnostics
}

func (e *DiagnosticsError) Error() string {
	return e.Diags.Error()
}

// Unwrap exposes the diagnostics to errors.As.
func (e *DiagnosticsError) Unwrap() error {
	return e.Diags
}

// Load parses every .hcl file found under paths and translates them into one
// model. Files are processed in lexical path order and units in source order
// within a file, which fixes the order units are bootstrapped in.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindFilesByExtension(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	model := &config.Model{}
	seen := make(map[string]*config.Unit)
	var diags hcl.Diagnostics

	for _, file := range hclFiles {
		hclFile, parseDiags := parser.ParseHCLFile(file)
		if parseDiags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, &DiagnosticsError{Diags: parseDiags})
		}

		var root schema.Manifest
		if decodeDiags := gohcl.DecodeBody(hclFile.Body, nil, &root); decodeDiags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, &DiagnosticsError{Diags: decodeDiags})
		}

		for _, u := range root.Units {
			unit, unitDiags := l.translateUnit(ctx, u)
			diags = append(diags, unitDiags...)
			if unitDiags.HasErrors() {
				continue
			}

			diags = append(diags, decl.Validate(unitDeclarations(unit))...)

			if prev, exists := seen[unit.Path]; exists {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate unit",
					Detail:   fmt.Sprintf("Unit %q was already defined at %s.", unit.Path, prev.DefRange.String()),
					Subject:  unit.DefRange.Ptr(),
				})
				continue
			}
			seen[unit.Path] = unit
			model.Units = append(model.Units, unit)
		}
	}

	if diags.HasErrors() {
		return nil, &DiagnosticsError{Diags: diags}
	}

	logger.Debug("HCL loading complete.", "units", len(model.Units))
	return model, nil
}

// unitDeclarations lists the declarations of a unit for the declaration
// validator.
func unitDeclarations(unit *config.Unit) []decl.Declaration {
	out := make([]decl.Declaration, 0, len(unit.Functions)+len(unit.Types))
	for _, f := range unit.Functions {
		out = append(out, decl.Declaration{QualifiedName: f.Name, Kind: decl.Function, Conditional: f.Conditional, Span: f.DefRange})
	}
	for _, t := range unit.Types {
		out = append(out, decl.Declaration{QualifiedName: t.Name, Kind: decl.Type, Conditional: t.Conditional, Span: t.DefRange})
	}
	return out
}
