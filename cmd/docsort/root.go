package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/docsort/internal/config"
	"github.com/JaimeStill/docsort/internal/learning"
	"github.com/JaimeStill/docsort/internal/scoring"
)

type options struct {
	output   string
	snapshot string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "docsort",
		Short: "Offline tools for the docsort classifier",
		Long: `docsort scores feature signals and replays threshold optimization
against exported feedback without a running server.

Scoring parameters and learning factors come from config.toml and
DOCSORT_* variables, the same sources the server reads.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	root.PersistentFlags().StringVar(&opts.snapshot, "snapshot", "", "configuration snapshot JSON (default: built-in weights and thresholds)")

	root.AddCommand(newScoreCmd(opts))
	root.AddCommand(newOptimizeCmd(opts))
	root.AddCommand(newConfigCmd())

	return root
}

// readInput returns the contents of args[0], or stdin when no file or "-"
// is given.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func loadSnapshot(path string) (learning.Snapshot, error) {
	if path == "" {
		return learning.Snapshot{
			Weights:    scoring.DefaultWeights(),
			Thresholds: scoring.DefaultThresholds(),
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return learning.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snap learning.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Weights == nil || snap.Thresholds == nil {
		return snap, fmt.Errorf("snapshot %s must contain weights and thresholds", path)
	}
	return snap, nil
}

// render writes v in the requested format. YAML output goes through JSON
// first so field names follow the json tags.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
