package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/entrhq/affine-tools/pkg/affine"
	"github.com/entrhq/affine-tools/pkg/agent/tools"
	"github.com/entrhq/affine-tools/pkg/config"
	"github.com/entrhq/affine-tools/pkg/logging"
	"github.com/entrhq/affine-tools/pkg/tools/docs"
)

const defaultEnvFile = ".env"

// newLogger is replaced in tests to simulate an unwritable log directory.
var newLogger = logging.NewLogger

// app holds state shared by the subcommands once the root pre-run has executed.
type app struct {
	configPath string
	envFile    string
	verbose    bool

	logger   *logging.Logger
	provider *docs.ClientProvider
	registry *tools.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "affine-tools",
		Short: "AFFiNE document tools for agents",
		Long: `affine-tools exposes AFFiNE workspaces and documents as agent tools.

Credentials come from the config file (default ~/.affine-tools/config.json)
and can be overridden with AFFINE_URL, AFFINE_EMAIL and AFFINE_PASSWORD,
optionally loaded from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags().Changed("env-file"))
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (.json, .yaml or .yml)")
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", defaultEnvFile, "Environment file to load before reading config")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newToolsCmd(a),
		newCallCmd(a),
		newServeCmd(a),
		newReadCmd(a),
	)
	return cmd
}

// setup loads the environment file, configuration, logger and tool registry.
// A missing env file is only an error when it was named explicitly.
func (a *app) setup(envFileExplicit bool) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			if envFileExplicit || !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load env file %s: %w", a.envFile, err)
			}
		}
	}

	logging.SetVerbose(a.verbose)
	logger, err := newLogger("cli")
	if err != nil {
		// Logger fell back to stderr; the CLI still works without a log file
		logger.Warnf("file logging unavailable, continuing with stderr: %v", err)
	}
	a.logger = logger

	if err := config.Initialize(a.configPath); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a.provider = docs.NewClientProvider(resolveSettings, affine.WithLogger(logger.With("component", "affine")))
	a.registry = tools.NewRegistry()
	if err := a.registry.Register(docs.NewToolRegistry(a.provider).RegisterTools()...); err != nil {
		return err
	}

	logger.Debugf("ready: %d tools registered", len(a.registry.List()))
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

// resolveSettings reads the affine section at call time so that edits to the
// environment between calls are honored until the client is first built.
func resolveSettings() (docs.Settings, error) {
	section := config.GetAffine()
	if section == nil {
		return docs.Settings{}, &affine.ConfigError{Message: "configuration not loaded"}
	}

	cfg, err := section.Resolve()
	if err != nil {
		return docs.Settings{}, err
	}

	allowed, denied := section.WorkspacePatterns()
	return docs.Settings{
		Client:            cfg,
		AllowedWorkspaces: allowed,
		DeniedWorkspaces:  denied,
	}, nil
}
