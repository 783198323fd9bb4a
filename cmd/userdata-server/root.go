package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"userdata/internal/config"
	"userdata/internal/server/bootstrap"
)

type rootOptions struct {
	viper      *viper.Viper
	configFile string
}

func (o *rootOptions) load() (config.Config, error) {
	return config.Load(o.viper, o.configFile)
}

// newRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{viper: viper.New()}

	root := &cobra.Command{
		Use:           "userdata-server",
		Short:         "Serve per-user data directories over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML config file (server keys and an observability block)")
	flags.String("listen", "127.0.0.1:8188", "Address to listen on")
	flags.String("user-directory", "user", "Root directory holding per-user data")
	flags.Bool("multi-user", false, "Enable multi-user mode backed by users.json")
	flags.String("environment", "development", "Deployment environment (production restricts CORS)")
	flags.StringSlice("allowed-origin", nil, "Allowed CORS origin, repeatable")
	flags.Duration("shutdown-timeout", 0, "Graceful shutdown timeout")

	for key, flag := range map[string]string{
		config.KeyListen:          "listen",
		config.KeyUserDirectory:   "user-directory",
		config.KeyMultiUser:       "multi-user",
		config.KeyEnvironment:     "environment",
		config.KeyAllowedOrigins:  "allowed-origin",
		config.KeyShutdownTimeout: "shutdown-timeout",
	} {
		_ = opts.viper.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newServeCommand(opts),
		newUsersCommand(opts),
		newVersionCommand(),
		newInitConfigCommand(),
	)
	return root
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return bootstrap.Run(ctx, cfg, opts.configFile)
}
