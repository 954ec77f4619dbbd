package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"radarcli/internal/validation"
)

func newRangesCmd(logger func() *slog.Logger) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "ranges [file]",
		Short: "Print the resolved range of every axis",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := stdinName
			if len(args) == 1 {
				input = args[0]
			}

			log := logger()
			if input != stdinName {
				if err := validation.NewFileValidator(opts.maxBytes, log).ValidateFile(input); err != nil {
					return err
				}
			}

			snapshots, err := renderInputs(cmd.Context(), cmd.InOrStdin(), []string{input}, opts, log)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DIMENSION\tMIN\tMAX\tREVERSE\tUNIT\tTICKS")
			for _, axis := range snapshots[0].Axes {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%d\n",
					axis.Dimension,
					strconv.FormatFloat(axis.Range.Min, 'g', -1, 64),
					strconv.FormatFloat(axis.Range.Max, 'g', -1, 64),
					axis.Range.Reverse,
					axis.Range.Unit,
					len(axis.Ticks))
			}
			return tw.Flush()
		},
	}

	opts.register(cmd)
	return cmd
}
