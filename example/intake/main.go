package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	config     *Config
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "intake",
		Short:        "Disaster report intake wizard",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(configPath)
			switch {
			case err == nil:
				config = conf
			case errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config"):
				config = &Config{}
			default:
				return err
			}
			slog.SetLogLoggerLevel(config.level())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to config file")
	root.AddCommand(runCmd(), checkCmd(), schemaCmd())
	return root
}
