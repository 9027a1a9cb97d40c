package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type clientFlags struct {
	apiURL string
	token  string
}

func newRootCommand() *cobra.Command {
	cf := &clientFlags{}

	root := &cobra.Command{
		Use:           "goout",
		Short:         "GoOut marketplace API server and command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Without a subcommand the server runs, so the container entrypoint needs no arguments.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&cf.apiURL, "api", envOr("GOOUT_API_URL", "http://localhost:8080"), "API base URL for client commands")
	root.PersistentFlags().StringVar(&cf.token, "token", os.Getenv("GOOUT_TOKEN"), "bearer token for client commands")

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newVersionCommand(),
		newKindsCommand(cf),
		newBrowseCommand(cf),
		newShowCommand(cf),
		newCreateCommand(cf),
		newDeleteCommand(cf),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
