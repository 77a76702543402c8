package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Skufu/GoRocky/internal/features"
)

func newFieldsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the clinical features in model order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tLABEL\tRANGE\tDEFAULT")
			for i, f := range features.Fields() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i, f.Name, f.Label, fieldRange(f), num(f.Default))
			}
			return w.Flush()
		},
	}
}

func fieldRange(f features.Field) string {
	if len(f.Choices) == 0 {
		return num(f.Min) + ".." + num(f.Max)
	}
	parts := make([]string, len(f.Choices))
	for i, c := range f.Choices {
		parts[i] = fmt.Sprintf("%d=%s", c.Value, c.Label)
	}
	return strings.Join(parts, ", ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
