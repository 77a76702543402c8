package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Skufu/GoRocky/internal/artifact"
	"github.com/Skufu/GoRocky/internal/features"
	"github.com/Skufu/GoRocky/internal/predict"
	"github.com/Skufu/GoRocky/internal/report"
)

type predictOptions struct {
	model  string
	input  string
	set    []string
	lang   string
	format string
}

type predictOutput struct {
	Label     int              `json:"label"`
	RiskScore float64          `json:"riskScore"`
	Model     predict.Selector `json:"model"`
	View      report.View      `json:"view"`
}

func newPredictCommand(g *globals) *cobra.Command {
	var opts predictOptions

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one prediction and print the result",
		Long: `Run the scaler and the selected classifier on one patient record.

The record starts from the form defaults. --input overlays a YAML or JSON
document ("-" reads stdin) and each --set name=value overrides one field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.model, "model", string(predict.RandomForest), "classifier: svm or rf")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "YAML or JSON file with patient features")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "override one feature, e.g. --set age=63")
	cmd.Flags().StringVar(&opts.lang, "lang", "en", "output language: en or id")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text or json")

	return cmd
}

func runPredict(cmd *cobra.Command, g *globals, opts predictOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("--format must be text or json, got %q", opts.format)
	}
	sel, err := predict.ParseSelector(opts.model)
	if err != nil {
		return err
	}

	record, err := readRecord(cmd.InOrStdin(), opts.input, opts.set)
	if err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	src, release, err := g.openSource(ctx)
	if err != nil {
		return err
	}
	defer release()

	lang := report.MatchLanguage(opts.lang)
	bundle, err := artifact.Load(ctx, src, g.names)
	if err != nil {
		return fmt.Errorf("%s\n%w", report.MissingArtifactsMessage(lang), err)
	}

	res, err := predict.New(bundle).Predict(record, sel)
	if err != nil {
		g.log.Debug().Err(err).Msg("prediction failed")
		return fmt.Errorf("%s\n%w", report.FailureMessage(lang), err)
	}

	view := report.Render(res, lang)
	out := cmd.OutOrStdout()
	if opts.format == "json" {
		data, err := json.MarshalIndent(predictOutput{
			Label:     res.Label,
			RiskScore: res.RiskScore,
			Model:     res.Model,
			View:      view,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	fmt.Fprintln(out, view.Verdict)
	fmt.Fprintln(out, view.Headline)
	fmt.Fprintln(out, view.Detail)
	fmt.Fprintf(out, "Model: %s\n", view.Model)
	_, err = fmt.Fprintln(out, view.Advice)
	return err
}

// readRecord builds a record from the defaults, an optional document and
// name=value overrides, in that order.
func readRecord(stdin io.Reader, path string, overrides []string) (features.PatientFeatures, error) {
	record := features.Defaults()

	if path != "" {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return record, fmt.Errorf("read input: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&record); err != nil && !errors.Is(err, io.EOF) {
			return record, fmt.Errorf("parse input %s: %w", path, err)
		}
	}

	for _, kv := range overrides {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return record, fmt.Errorf("--set %q: expected name=value", kv)
		}
		field, ok := features.Lookup(strings.TrimSpace(name))
		if !ok {
			return record, fmt.Errorf("--set %q: unknown feature %q", kv, name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return record, fmt.Errorf("--set %q: %w", kv, err)
		}
		if field.Kind != features.KindFloat && v != math.Trunc(v) {
			return record, fmt.Errorf("--set %q: %s takes whole numbers", kv, field.Label)
		}
		field.Set(&record, v)
	}

	return record, nil
}
