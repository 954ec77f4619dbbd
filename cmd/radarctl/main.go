// Command radarctl renders delimited text files and Excel workbooks into
// radar chart snapshots without running the server.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"radarcli/internal/infrastructure"
	"radarcli/pkg/contracts"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "radarctl",
		Short: "Render tables into radar chart geometry",
		Long: `radarctl parses pasted-style tables (tab or comma separated)
and .xlsx workbooks, resolves every axis range and prints the chart
snapshot the server would publish, as JSON.`,
		SilenceUsage: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	logger := func() *slog.Logger {
		return infrastructure.WithComponent(
			slog.New(infrastructure.NewHandler(root.ErrOrStderr(), logLevel, false)), "radarctl")
	}

	root.AddCommand(
		newRenderCmd(logger),
		newRangesCmd(logger),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(contracts.GetFullVersionString())
			return nil
		},
	}
}
