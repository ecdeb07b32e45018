package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/mcp-city-time/server"
	"github.com/user/mcp-city-time/timeservice"
	"github.com/user/mcp-city-time/tools"
)

// newExecutor is a seam for tests to stub out dig/nslookup.
var newExecutor = func() timeservice.Executor { return timeservice.DefaultExecutor{} }

// CLIArgs holds the persistent flags shared by every subcommand.
type CLIArgs struct {
	ConfigPath string
	ListenAddr string
	Mode       string
	LogLevel   string
	DBPath     string
	Origins    string
	Platform   string
}

// NewRootCmd builds the city-time command tree. Running it without a
// subcommand starts the server.
func NewRootCmd() *cobra.Command {
	args := &CLIArgs{}

	root := &cobra.Command{
		Use:   "city-time",
		Short: "MCP server with a greeting tool and a city time lookup",
		Long: `city-time serves two MCP tools:
- greet_user: greets the caller by name
- get_city_time: looks up the current time of a city via dns.toys`,
		Version:       tools.ServerVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, args)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&args.ConfigPath, "config", "", "YAML config file")
	flags.StringVar(&args.ListenAddr, "listen", "", "HTTP listen address (default :3000)")
	flags.StringVar(&args.Mode, "mode", "", "Transport: http or stdio (default http)")
	flags.StringVar(&args.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&args.DBPath, "db", "", "SQLite history database path (default: in-memory)")
	flags.StringVar(&args.Origins, "origins", "", "Comma-separated allowed origins")
	flags.StringVar(&args.Platform, "platform", "", "Lookup command: auto, dig or nslookup")

	root.AddCommand(newServeCmd(args))
	root.AddCommand(newLookupCmd(args))
	root.AddCommand(newHistoryCmd(args))
	root.AddCommand(newVersionCmd())

	return root
}

// loadConfig layers changed flags over the file and environment config.
func loadConfig(cmd *cobra.Command, args *CLIArgs) (server.Config, error) {
	cfg, err := server.LoadConfig(args.ConfigPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.ListenAddr = args.ListenAddr
	}
	if flags.Changed("mode") {
		cfg.Mode = args.Mode
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = args.LogLevel
	}
	if flags.Changed("db") {
		cfg.DBPath = args.DBPath
	}
	if flags.Changed("origins") {
		cfg.AllowedOrigins = server.SplitOrigins(args.Origins)
	}
	if flags.Changed("platform") {
		cfg.Lookup.Platform = args.Platform
	}

	return cfg, cfg.Validate()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", tools.ServerName, tools.ServerVersion)
			return err
		},
	}
}
