package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/docsort/internal/scoring"
)

type scoreOutput struct {
	Scores            scoring.Scores `json:"scores"`
	Predicted         scoring.Class  `json:"predicted"`
	Confidence        float64        `json:"confidence"`
	Rule              scoring.Rule   `json:"rule"`
	WeightsVersion    int            `json:"weights_version"`
	ThresholdsVersion int            `json:"thresholds_version"`
}

func newScoreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "score [signal.json]",
		Short: "Score a feature signal and print the decision",
		Long: `Score reads one feature signal as JSON, from a file or stdin, and
prints per-class scores with the decision they produce.

Examples:
  docsort score signal.json
  docsort score --snapshot w000012-t000003.json signal.json
  cat signal.json | docsort score -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var signal scoring.Signal
			if err := json.Unmarshal(data, &signal); err != nil {
				return fmt.Errorf("decode signal: %w", err)
			}
			if err := signal.Validate(); err != nil {
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

			scores := scoring.Compute(&signal, snap.Weights, cfg.Scoring)
			d := scoring.Decide(scores, snap.Thresholds)

			return render(cmd.OutOrStdout(), opts.output, scoreOutput{
				Scores:            scores,
				Predicted:         d.Class,
				Confidence:        d.Confidence,
				Rule:              d.Rule,
				WeightsVersion:    snap.Weights.Version(),
				ThresholdsVersion: snap.Thresholds.Version(),
			})
		},
	}
}
