package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docsearch/internal/config"
	"github.com/kailas-cloud/docsearch/internal/version"
)

type rootFlags struct {
	configPath string
	env        string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "docsearch",
		Short: "Fuzzy document search over a single collection.",
		Long: `docsearch serves typo-tolerant search over one document collection.

Configuration is read from config/{ENV}.yaml (ENV defaults to local) or from --config.
Running without a subcommand starts the HTTP server.`,
		Version:       version.String(),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is config/{env}.yaml)")
	root.PersistentFlags().StringVar(&flags.env, "env", config.GetEnv(), "environment name: local, dev, docker, prod")

	root.AddCommand(newServeCmd(flags), newQueryCmd(flags), newImportCmd(flags))
	return root
}

func (f *rootFlags) load() (config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	return config.Load(f.env)
}
