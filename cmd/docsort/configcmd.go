package main

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

const redacted = "********"

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Config loads config.toml, the DOCSORT_ENV overlay and DOCSORT_*
variables, then prints the finalized result. Credentials are redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if cfg.Database.Password != "" {
				cfg.Database.Password = redacted
			}
			if cfg.Storage.ConnectionString != "" {
				cfg.Storage.ConnectionString = redacted
			}

			data, err := toml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
