package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"opsrun/internal/config"
	"opsrun/internal/history"
	"opsrun/internal/repo"
	"opsrun/internal/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

// Execute runs the CLI and returns the process exit code: the exit code of
// the last automation run, or 0 when the operator leaves without running
// anything.
func Execute() int {
	exitCode := 0

	rootCmd := &cobra.Command{
		Use:           "opsrun",
		Short:         "Interactive runner for Ansible playbooks from a Git repository",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := bootstrap()
			if err != nil {
				return err
			}
			exitCode = session.Run(cmd.Context())
			return nil
		},
	}
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31m%v\033[0m\n", err)
		return 1
	}
	return exitCode
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the opsrun version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("opsrun %s\n", Version)
		},
	}
}

// bootstrap loads configuration (prompting for the repository path on first
// run or when the config file is unreadable) and wires the session.
func bootstrap() (*Session, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if os.Getenv("OPSRUN_DEBUG") != "" {
		logger = logger.Level(zerolog.DebugLevel)
	}
	term := ui.Terminal{}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warn().Err(err).Msg("no usable configuration, starting first-run setup")
		cfg = &config.Config{}
	}
	config.LoadEnv(cfg)

	if err := resolveRepositoryPath(cfg, term, logger); err != nil {
		return nil, err
	}

	return &Session{
		Config:  cfg,
		UI:      term,
		Runner:  defaultRunner(logger),
		History: &history.Log{Path: cfg.HistoryFile()},
		Log:     logger,
	}, nil
}

// resolveRepositoryPath keeps prompting on first run until the operator
// supplies a usable checkout path. Only an aborted prompt ends the setup.
func resolveRepositoryPath(cfg *config.Config, u ui.UI, logger zerolog.Logger) error {
	for cfg.RepositoryPath == "" {
		path, err := u.Input("Path to the automation repository checkout", "~/ansible-repo")
		if err != nil {
			return fmt.Errorf("repository path is required: %w", err)
		}
		if err := repo.Validate(path); err != nil {
			fmt.Printf("\033[31m%v\033[0m\n", err)
			continue
		}
		cfg.RepositoryPath = path
		if err := config.SaveConfig(cfg); err != nil {
			logger.Warn().Err(err).Msg("failed to save configuration")
		}
	}
	return nil
}
