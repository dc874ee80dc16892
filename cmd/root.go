package cmd

import (
	"fmt"

	"github.com/compozy/gitmerge/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "git-merge",
	Short: "Manage release trains declared in releases.json",
	Long: `git-merge keeps the release registry (releases.json) at the root of a
repository. Each entry names a target branch release/<name> that collects
feature branches merged with a given strategy.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

// InitCommands registers every command and binds the persistent flags to the
// configuration keys they override.
func InitCommands() error {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default is ./.git-merge.yaml)")
	flags.String("releases-file", "", "Registry file relative to the repository root")
	flags.String("log-level", "", "Log level: debug, info, warn, error or none")
	flags.String("oracle", "", "Branch lookup: git (local clone) or github (API)")
	bindings := map[string]string{
		"releases_file": "releases-file",
		"log_level":     "log-level",
		"oracle":        "oracle",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	rootCmd.Version = version.Summary()
	rootCmd.AddCommand(
		newCreateCmd(),
		newAddCmd(),
		newAddBranchCmd(),
		newListCmd(),
		newVersionCmd(),
	)
	return nil
}
