package cmd

import (
	"fmt"

	"github.com/compozy/gitmerge/internal/usecase"
	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create an empty release registry at the repository root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.close()
			if c.skipNested(cmd.Name()) {
				return nil
			}
			uc := &usecase.CreateRegistryUseCase{Store: c.store, Logger: c.log}
			path := c.registryPath()
			if err := uc.Execute(cmd.Context(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
}
