package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/learning"
	"github.com/JaimeStill/docsort/internal/scoring"
)

type optimizeOutput struct {
	learning.Report
	Thresholds map[scoring.Class]float64 `json:"thresholds"`
}

func newOptimizeCmd(opts *options) *cobra.Command {
	var (
		percentile float64
		minSamples int
		window     int
	)

	cmd := &cobra.Command{
		Use:   "optimize [feedback.json]",
		Short: "Replay threshold optimization over exported feedback",
		Long: `Optimize reads feedback entries, either a JSON array or the body of
GET /api/learning/stats, and prints the thresholds the optimizer would
publish. Nothing is written.

Examples:
  docsort optimize feedback.json
  curl -s localhost:8080/api/learning/stats | docsort optimize --percentile 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			entries, err := decodeEntries(data)
			if err != nil {
				return err
			}

			snap, err := loadSnapshot(opts.snapshot)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			lcfg := cfg.Learning
			if cmd.Flags().Changed("percentile") {
				lcfg.Percentile = percentile
			}
			if cmd.Flags().Changed("min-samples") {
				lcfg.MinSamples = minSamples
			}
			if cmd.Flags().Changed("window") {
				lcfg.Window = window
			}
			if err := lcfg.Validate(); err != nil {
				return err
			}
			if lcfg.Window > 0 && len(entries) > lcfg.Window {
				entries = entries[len(entries)-lcfg.Window:]
			}

			report, err := learning.Optimize(entries, snap.Thresholds, lcfg)
			if err != nil && !errors.Is(err, learning.ErrInsufficientData) {
				return err
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}

			return render(cmd.OutOrStdout(), opts.output, optimizeOutput{
				Report:     report,
				Thresholds: report.Values,
			})
		},
	}

	cmd.Flags().Float64Var(&percentile, "percentile", 0, "override learning.threshold_percentile")
	cmd.Flags().IntVar(&minSamples, "min-samples", 0, "override learning.min_samples")
	cmd.Flags().IntVar(&window, "window", 0, "only use the most recent N entries")

	return cmd
}

func decodeEntries(data []byte) ([]feedback.Entry, error) {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var entries []feedback.Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode feedback: %w", err)
		}
		return entries, nil
	}

	var stats struct {
		Recent []feedback.Entry `json:"recent_feedback"`
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return stats.Recent, nil
}
