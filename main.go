package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"

	"letta-mcp-server/internal/application"
	"letta-mcp-server/internal/domain"
	"letta-mcp-server/internal/infrastructure"
)

var logger = xlog.NewPackageLogger("letta-mcp-server", "main")

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "letta-mcp-server",
		Short: "MCP server for the Letta agent platform",
		Long:  "letta-mcp-server exposes Letta agents, memory blocks and archival memory as MCP tools.",
		// SilenceUsage prevents printing usage on every error
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.PersistentFlags().String("config", "", "Path to an optional YAML configuration file")
	cmd.Flags().String("transport", "", "Transport to serve on: stdio or http")
	cmd.Flags().String("host", "", "Listen host for the http transport")
	cmd.Flags().Int("port", 0, "Listen port for the http transport")
	cmd.PersistentFlags().String("log-level", "", "Log level: TRACE, DEBUG, INFO, WARNING, ERROR or CRITICAL")

	cmd.AddCommand(newToolsCmd())
	return cmd
}

// newToolsCmd prints the tool catalog without contacting Letta.
func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			router := buildRouter(config)
			data, err := json.MarshalIndent(map[string]interface{}{"tools": router.ListAllTools()}, "", "  ")
			if err != nil {
				return errors.Wrap(err, "failed to encode tool catalog")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	transport, err := buildTransport(config)
	if err != nil {
		return err
	}

	server := application.NewServer(transport, buildRouter(config), config)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := server.Run(ctx)
	if err := server.Close(); err != nil {
		logger.KV(xlog.ERROR, "status", "shutdown_failed", "err", err.Error())
	}
	if runErr != nil {
		return runErr
	}

	logger.KV(xlog.INFO, "status", "shutdown_complete")
	return nil
}

// loadConfig reads the configuration, applies flag overrides and sets up logging.
func loadConfig(cmd *cobra.Command) (*domain.Config, error) {
	xlog.SetFormatter(xlog.NewStringFormatter(cmd.ErrOrStderr()))

	configPath, _ := cmd.Flags().GetString("config")
	config, err := domain.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed to load configuration: %v\n", err)
		return nil, err
	}

	if err := applyFlags(cmd, config); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "invalid flags: %v\n", err)
		return nil, err
	}

	setLogLevel(config.Log.Level)
	logger.KV(xlog.DEBUG,
		"status", "configuration_loaded",
		"transport", config.Transport.Type,
		"base_url", config.Letta.BaseURL,
		"default_agent", config.Letta.DefaultAgentID != "",
	)
	return config, nil
}

// applyFlags overrides configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command, config *domain.Config) error {
	flags := cmd.Flags()
	if flags.Changed("transport") {
		config.Transport.Type, _ = flags.GetString("transport")
	}
	if flags.Changed("host") {
		config.Transport.HTTP.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		config.Transport.HTTP.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("log-level") {
		config.Log.Level, _ = flags.GetString("log-level")
	}
	return config.Validate()
}

func setLogLevel(level string) {
	switch strings.ToUpper(level) {
	case "TRACE":
		xlog.SetGlobalLogLevel(xlog.TRACE)
	case "DEBUG":
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	case "WARNING":
		xlog.SetGlobalLogLevel(xlog.WARNING)
	case "ERROR":
		xlog.SetGlobalLogLevel(xlog.ERROR)
	case "CRITICAL":
		xlog.SetGlobalLogLevel(xlog.CRITICAL)
	default:
		xlog.SetGlobalLogLevel(xlog.INFO)
	}
}

// buildRouter wires the Letta tools. The client is created lazily on the first call.
func buildRouter(config *domain.Config) *application.RequestRouter {
	authManager := domain.NewAuthenticationManagerFromConfig(config)
	provider := infrastructure.NewLazyClientProvider(config.Letta, authManager)
	mapper := domain.NewResponseMapper()

	handler := application.NewLettaHandler(provider, config.Letta.DefaultAgentID, mapper)
	return application.NewRequestRouter(mapper, handler.Tools()...)
}

func buildTransport(config *domain.Config) (domain.Transport, error) {
	switch config.Transport.Type {
	case "stdio":
		return domain.NewStdioTransport(), nil
	case "http":
		logger.KV(xlog.INFO, "status", "http_transport", "host", config.Transport.HTTP.Host, "port", config.Transport.HTTP.Port)
		return domain.NewHTTPTransport(config.Transport.HTTP.Host, config.Transport.HTTP.Port), nil
	default:
		return nil, errors.Newf("invalid transport type: %s", config.Transport.Type)
	}
}
