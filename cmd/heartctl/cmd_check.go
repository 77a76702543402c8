package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skufu/GoRocky/internal/artifact"
)

func newCheckCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every model artifact loads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, release, err := g.openSource(ctx)
			if err != nil {
				return err
			}
			defer release()

			out := cmd.OutOrStdout()
			var firstErr error
			for _, st := range artifact.Check(ctx, src, g.names) {
				if st.Err != nil {
					fmt.Fprintf(out, "FAIL  %s: %v\n", st.Name, st.Err)
					if firstErr == nil {
						firstErr = st.Err
					}
					continue
				}
				fmt.Fprintf(out, "OK    %s\n", st.Name)
			}
			if firstErr != nil {
				return fmt.Errorf("artifact check failed: %w", firstErr)
			}
			return nil
		},
	}
}
