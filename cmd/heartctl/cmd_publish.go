package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skufu/GoRocky/internal/artifact"
)

func newPublishCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Upload the artifacts in --dir to the model_artifacts table",
		Long: `Upload the scaler and both classifiers from --dir into Postgres so that
servers started with ARTIFACT_SOURCE=postgres can load them. Nothing is
written unless all three artifacts decode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			names := g.names
			src := artifact.FileSource{Dir: g.dir}

			for _, st := range artifact.Check(ctx, src, names) {
				if st.Err != nil {
					return fmt.Errorf("refusing to publish: %w", st.Err)
				}
			}

			pool, err := g.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := artifact.Publish(ctx, pool, src, names); err != nil {
				return fmt.Errorf("publish: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s, %s and %s from %s\n",
				names.Scaler, names.SVM, names.RandomForest, g.dir)
			return nil
		},
	}
}
