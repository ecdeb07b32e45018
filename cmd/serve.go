package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/user/mcp-city-time/logging"
	"github.com/user/mcp-city-time/server"
)

func newServeCmd(args *CLIArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over HTTP or stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, args)
		},
	}
}

func runServe(cmd *cobra.Command, args *CLIArgs) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	srv, err := server.NewServer(cfg, logger, server.WithExecutor(newExecutor()))
	if err != nil {
		return err
	}
	defer srv.Close()

	if cfg.Mode == "http" {
		logger.Info("MCP endpoint: http://%s%s", srv.GetListenAddr(), server.MCPPath)
	}

	err = srv.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("city-time shutdown complete")
	return err
}
