// Command nexus runs convention-driven GraphQL projects from the command
// line: serve starts the HTTP server, typegen emits the generated schema
// artifacts and exits.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/SpaceK33z/nexus"
)

// Version is set via -ldflags at release time.
var Version = "dev"

var (
	projectDir string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "nexus",
		Short: "Convention-driven GraphQL application server",
		Long: `nexus assembles a GraphQL application from conventional paths in the
project directory: SDL schema modules under schema/ (or a single
schema.graphql), an optional context module at server/context.go, and a
.nexus/ cache for synthesized scaffolding and generated artifacts.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "dir", ".", "project directory holding the conventional paths")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(typegenCmd)
}

var (
	servePort       int
	noPlayground    bool
	noIntrospection bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Create the app from the project conventions and start the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := nexus.New(nexus.WithDir(projectDir))
			if err != nil {
				return err
			}
			return app.StartServer(nexus.ServerOptions{
				Port:          servePort,
				Playground:    nexus.Bool(!noPlayground),
				Introspection: nexus.Bool(!noIntrospection),
			})
		},
	}

	typegenCmd = &cobra.Command{
		Use:   "typegen",
		Short: "Generate schema artifacts and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := nexus.New(nexus.WithDir(projectDir))
			if err != nil {
				return err
			}
			return app.GenerateArtifacts()
		},
	}
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default 4000)")
	serveCmd.Flags().BoolVar(&noPlayground, "no-playground", false, "disable the playground UI")
	serveCmd.Flags().BoolVar(&noIntrospection, "no-introspection", false, "disable schema introspection")
}

// Execute runs the root command through fang for consistent styling.
func Execute() error {
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	)
}
