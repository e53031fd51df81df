package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/vk/declrt/internal/ctxlog"
	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives printed output. Defaults to os.Stdout.
	Out io.Writer

	mu sync.Mutex
}

func (m *Module) out() io.Writer {
	if m.Out == nil {
		return os.Stdout
	}
	return m.Out
}

func (m *Module) write(s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := io.WriteString(m.out(), s)
	return err
}

// Print writes the string form of its arguments and returns 1.
func (m *Module) Print(ctx context.Context, args ...cty.Value) (cty.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.String(a)
	}
	line := strings.Join(parts, "")
	ctxlog.FromContext(ctx).Debug("Printing value.", "output", line)

	if err := m.write(line + "\n"); err != nil {
		return value.Unset, fmt.Errorf("print failed: %w", err)
	}
	return cty.NumberIntVal(1), nil
}

// Export writes a parsable representation of its first argument. With a
// true second argument the representation is returned instead of written.
func (m *Module) Export(_ context.Context, args ...cty.Value) (cty.Value, error) {
	if len(args) == 0 {
		return value.Unset, fmt.Errorf("var_export() expects at least 1 argument, 0 given")
	}
	repr := args[0].GoString()
	if len(args) > 1 && value.Truthy(args[1]) {
		return cty.StringVal(repr), nil
	}
	if err := m.write(repr + "\n"); err != nil {
		return value.Unset, fmt.Errorf("var_export failed: %w", err)
	}
	return cty.NullVal(cty.DynamicPseudoType), nil
}

// Register registers the handlers and library functions with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("Print", m.Print)
	r.RegisterHandler("Export", m.Export)
	r.DeclareLibraryFunction("print", m.Print)
	r.DeclareLibraryFunction("var_export", m.Export)
}
