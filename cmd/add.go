package cmd

import (
	"fmt"

	"github.com/compozy/gitmerge/internal/usecase"
	"github.com/spf13/cobra"
)

// newAddCmd creates the add command, which registers a new release train
func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add <release/NAME>",
		Aliases: []string{"register"},
		Short:   "Register a release branch in the registry",
		Long: `Register a release branch in releases.json.

The branch must be named release/<name>, must exist in the repository and
must not be registered already. New releases use the OCTOPUS strategy and
start without source branches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.close()
			if c.skipNested(cmd.Name()) {
				return nil
			}
			uc := &usecase.RegisterReleaseUseCase{
				Store:  c.store,
				Oracle: c.oracle,
				Logger: c.log,
				Lock:   c.cfg.Lock,
			}
			path := c.registryPath()
			release, err := uc.Execute(cmd.Context(), path, args[0])
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s) in %s\n", release.TargetBranch, release.Strategy, path)
			return nil
		},
	}
}
