package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roboricindustries/raycon-conversation/pkg/config"
)

func NewConvintentCommand() *cobra.Command {
	var dotenv string

	cmd := &cobra.Command{
		Use:           "convintent",
		Short:         "Build, inspect and publish conversation launch intents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&dotenv, "env-file", ".env", "Optional .env file with CONVINTENT_* settings")

	loadConfig := func() (*config.Config, *slog.Logger, error) {
		cfg, err := config.Load(dotenv)
		if err != nil {
			return nil, nil, err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
		return cfg, logger, nil
	}

	cmd.AddCommand(
		newBuildCommand(),
		newDecodeCommand(),
		newPublishCommand(loadConfig),
		newListenCommand(loadConfig),
	)
	return cmd
}

func main() {
	cmd := NewConvintentCommand()
	if err := cmd.Execute(); err != nil {
		slog.Error("convintent failed", slog.Any("error", err))
		os.Exit(1)
	}
}
