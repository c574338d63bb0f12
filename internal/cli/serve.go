package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/credence/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve verification over HTTP",
	Long: `Serve starts the HTTP entry point:

  POST /verify   {"text": "...", "language": "zh-TW", "publishDate": "2025-06-10", "mode": "news"}
  GET  /         health check
  GET  /metrics  Prometheus metrics

Example:
  credence serve
  credence serve --addr 127.0.0.1:5000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().String("search", "", "search provider (duckduckgo, searxng)")
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keys := map[string]string{"addr": "server.addr"}
	for k, v := range commonFlagKeys {
		keys[k] = v
	}
	if err := bindFlags(cmd, keys); err != nil {
		return err
	}
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	applyLLMFlags(cfg)

	logger := newLogger(verbose)
	stack, err := build(cfg, logger)
	if err != nil {
		return err
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.New(cfg.Server, stack.pipeline, stack.metrics, logger)

	fmt.Fprintf(os.Stderr, "🚀 Credence server listening on %s\n", cfg.Server.Addr)
	return server.Run(ctx, cfg.Server.Addr, router, logger)
}
