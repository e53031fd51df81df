package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vk/declrt/internal/value"
)

func newRunCommand(v *viper.Viper, opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run --entry <unit> [manifests...]",
		Short: "Run an entry unit",
		Long: `Run the entry unit with require semantics in a fresh run context.

With --runs greater than one, that many independent run contexts execute
the entry unit concurrently, at most --workers at a time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := v.GetString("entry")
			if entry == "" {
				return usageError(fmt.Errorf("an entry unit is required (--entry)"))
			}

			a, cfg, err := newApp(cmd, v, opts, args)
			if err != nil {
				return err
			}

			if cfg.Runs == 1 {
				result, err := a.Run(cmd.Context(), entry)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", value.String(result))
				return nil
			}

			results, err := a.RunConcurrent(cmd.Context(), entry, cfg.Runs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d runs completed\n", len(results))
			return nil
		},
	}
	cmd.Flags().String("entry", "", "Path of the unit to run.")
	cmd.Flags().Int("runs", 1, "Number of independent run contexts.")
	return cmd
}
