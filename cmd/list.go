package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/compozy/gitmerge/internal/usecase"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var sortOrder string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := usecase.ParseReleaseOrder(sortOrder)
			if err != nil {
				return err
			}
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.close()
			if c.skipNested(cmd.Name()) {
				return nil
			}
			uc := &usecase.ListReleasesUseCase{Store: c.store, GitRepo: c.gitRepo}
			summaries, err := uc.Execute(cmd.Context(), c.registryPath(), order)
			if err != nil {
				return explain(err)
			}
			printReleases(cmd.OutOrStdout(), summaries)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortOrder, "sort", string(usecase.OrderFile), "Sort order: file or version")
	return cmd
}

func printReleases(out io.Writer, summaries []usecase.ReleaseSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No releases registered")
		return
	}
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow("TARGET", "STRATEGY", "LOCAL", "BRANCHES")
	for _, s := range summaries {
		names := make([]string, 0, len(s.Release.Branches))
		for _, b := range s.Release.Branches {
			names = append(names, b.Name)
		}
		local := "no"
		if s.Local {
			local = "yes"
		}
		table.AddRow(s.Release.TargetBranch, s.Release.Strategy, local, strings.Join(names, ", "))
	}
	fmt.Fprintln(out, table.String())
}
