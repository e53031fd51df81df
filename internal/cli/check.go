package cli

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vk/declrt/internal/hcl_adapter"
)

func newCheckCommand(v *viper.Viper, opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check [manifests...]",
		Short: "Load and validate manifests",
		Long: `Load the manifests, run declaration validation on every unit and check
that every entry point and function handler they reference is compiled in.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := newApp(cmd, v, opts, args)
			if err != nil {
				var diagErr *hcl_adapter.DiagnosticsError
				if errors.As(err, &diagErr) {
					printDiagnostics(cmd, diagErr.Diags)
				}
				return err
			}

			reg := a.Registry()
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d units, %d functions, %d types, %d constants\n",
				reg.Scripts.Len(), len(reg.Functions.AppEntries()), len(reg.Types.AppEntries()), reg.Constants.Len())
			return nil
		},
	}
}

func printDiagnostics(cmd *cobra.Command, diags hcl.Diagnostics) {
	w := cmd.OutOrStdout()
	for _, d := range diags {
		severity := "Error"
		if d.Severity == hcl.DiagWarning {
			severity = "Warning"
		}
		if d.Subject != nil {
			fmt.Fprintf(w, "%s: %s\n  on %s\n", severity, d.Summary, d.Subject.String())
		} else {
			fmt.Fprintf(w, "%s: %s\n", severity, d.Summary)
		}
		if d.Detail != "" {
			fmt.Fprintf(w, "  %s\n", d.Detail)
		}
	}
}
