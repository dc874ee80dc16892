package cmd

import (
	"fmt"

	"github.com/compozy/gitmerge/internal/usecase"
	"github.com/spf13/cobra"
)

func newAddBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-branch <release/NAME> <branch>",
		Short: "Add a source branch to a registered release",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.close()
			if c.skipNested(cmd.Name()) {
				return nil
			}
			uc := &usecase.AddBranchUseCase{
				Store:  c.store,
				Oracle: c.oracle,
				Logger: c.log,
				Lock:   c.cfg.Lock,
			}
			release, err := uc.Execute(cmd.Context(), c.registryPath(), args[0], args[1])
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s (%d branches)\n",
				args[1], release.TargetBranch, len(release.Branches))
			return nil
		},
	}
}
