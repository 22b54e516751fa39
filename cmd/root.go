package cmd

import (
	"os"
	"strings"

	"casino/economy-bot/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the CLI. Running it without a subcommand starts the bot.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "economy-bot",
		Short:        "Discord server economy and casino bot",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(config.Get())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Connect to Discord and serve the economy",
			RunE: func(cmd *cobra.Command, args []string) error {
				return Run(cmd.Context())
			},
		},
		newMigrateCmd(),
	)
	return root
}

func configureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
