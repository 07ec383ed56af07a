package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bokfor-dev/bokfor/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "bokfor",
		Short:   "Multi-company double-entry bookkeeping",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "bokfor.yaml", "path to configuration file")

	rootCmd.AddCommand(newInitCommand(&configPath))
	rootCmd.AddCommand(newCompanyCommand(&configPath))
	rootCmd.AddCommand(newPostCommand(&configPath))
	rootCmd.AddCommand(newReverseCommand(&configPath))
	rootCmd.AddCommand(newBalanceCommand(&configPath))
	rootCmd.AddCommand(newImportCommand(&configPath))
	rootCmd.AddCommand(newExportCommand(&configPath))
	rootCmd.AddCommand(newCloseCommand(&configPath))
	rootCmd.AddCommand(newGroupCommand(&configPath))
	rootCmd.AddCommand(newConsolidateCommand(&configPath))
	rootCmd.AddCommand(newRateCommand(&configPath))

	return rootCmd
}
