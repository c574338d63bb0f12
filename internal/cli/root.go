package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/credence/internal/model"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "credence",
	Short: "Credence - evidence-based credibility checks for news claims",
	Long: `Credence extracts the checkable claims of a news article or free text,
searches for external evidence, and judges whether that evidence supports
or contradicts each claim.

News articles are judged from their details: a headline is misleading when
any of its details is contradicted. Free text gets an overall HIGH, LOW or
UNCERTAIN credibility from the majority of its claims.

Credence reports evidence, not truth.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Credence.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("credence %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.credence/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// Keys that can be set from CREDENCE_* environment variables
var envKeys = []string{
	"llm.provider", "llm.model", "llm.api_key", "llm.base_url", "llm.timeout",
	"search.provider", "search.base_url", "search.region", "search.max_results",
	"http.user_agent", "http.http_proxy", "http.https_proxy", "http.no_proxy", "http.render",
	"server.addr", "server.allowed_origins",
	"concurrency.claim_workers", "concurrency.batch_workers",
	"temporal.stale_policy", "output.include_evidence",
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.credence")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CREDENCE_*
	viper.SetEnvPrefix("CREDENCE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file, environment and bound flags over the
// defaults, then fills provider credentials from their usual variables
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyProviderEnv(cfg, os.Getenv)
	return cfg, nil
}

// applyProviderEnv reads API keys and the Ollama address from the provider
// conventions when the config leaves them empty
func applyProviderEnv(cfg *model.Config, getenv func(string) string) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = getenv("OLLAMA_BASE_URL")
		}
	}
}

// Flags shared by the verify, batch and serve commands and their config keys
var commonFlagKeys = map[string]string{
	"render":      "http.render",
	"http-proxy":  "http.http_proxy",
	"https-proxy": "http.https_proxy",
	"search":      "search.provider",
}

// bindFlags binds the running command's flags to config keys. Only flags set
// on the command line are bound, so unset flags never mask the config file.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for name, key := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// newLogger builds the process logger. Reports go to stdout; logs go to stderr.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
