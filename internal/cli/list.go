package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vk/declrt/internal/value"
)

func newListCommand(v *viper.Viper, opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list [manifests...]",
		Short: "List registered units and application-level symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := newApp(cmd, v, opts, args)
			if err != nil {
				return err
			}
			reg := a.Registry()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "KIND\tNAME\tDETAIL")
			for i, p := range reg.Scripts.Paths() {
				fmt.Fprintf(w, "unit\t%s\tid=%d\n", p, i)
			}
			for _, r := range reg.Functions.AppEntries() {
				fmt.Fprintf(w, "function\t%s\t%s\n", r.Name, orDash(r.Unit))
			}
			for _, t := range reg.Types.AppEntries() {
				fmt.Fprintf(w, "type\t%s\t%s\n", t.Name, orDash(t.Unit))
			}
			for name, val := range reg.Constants.All() {
				fmt.Fprintf(w, "constant\t%s\t%s\n", name, value.String(val))
			}
			return w.Flush()
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
