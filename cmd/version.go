package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/compozy/gitmerge/pkg/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print git-merge build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "git-merge %s\n", version.Summary())
			fmt.Fprintf(out, "Version:\t%s\n", orDefault(version.Version, "dev"))
			fmt.Fprintf(out, "Commit:\t%s\n", orDefault(version.CommitHash, "unknown"))
			fmt.Fprintf(out, "Built:\t%s\n", orDefault(version.BuildDate, "unknown"))
			fmt.Fprintf(out, "Go:\t%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
