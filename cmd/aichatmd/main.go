package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/aichatmd/internal/config"
)

var version = "dev"

// global flags shared by every subcommand
var (
	configPath string
	dbPath     string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := convertCmd()
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the archive database")

	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(doctorCmd())
	return rootCmd
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "aichatmd: ", 0)
}

// loadConfig applies the global flags on top of ov.
func loadConfig(cmd *cobra.Command, ov config.Overrides) (*config.Config, error) {
	ov.ConfigPath = configPath
	if cmd.Flags().Changed("db") {
		ov.DBPath = &dbPath
	}
	cfg, err := config.Load(ov)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
