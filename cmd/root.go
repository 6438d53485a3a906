package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the sherpa application
var rootCmd = &cobra.Command{
	Use:   "sherpa",
	Short: "Personal assistant MCP server",
	Long: `sherpa is a personal assistant gateway that exposes Google Calendar,
TickTick tasks, meal logging, and Obsidian-style markdown notes as MCP
(Model Context Protocol) tools for AI assistants.

It can run as:
  - An MCP server over stdio (default, for local assistant clients)
  - An MCP server over streamable HTTP (for deployed instances)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "sherpa version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
