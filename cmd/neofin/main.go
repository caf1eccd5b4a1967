package main

import (
	"fmt"
	"os"

	"NeoFin/internal/di"
	"NeoFin/pkg/config"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

// newRootCmd builds the command tree; tests get a fresh one each time.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "neofin",
		Short: "NeoFin - personal finance assistant",
		Long: `NeoFin estimates how long a savings goal takes, builds a data-driven
asset basket for a risk profile and answers finance questions in a chat.

API keys are read from the environment:
  GROQ_API_KEY    chat model (chat and plan are disabled without it)
  TAVILY_API_KEY  web search (optional)
  GOOGLE_API_KEY  Gemini provider (optional)
  EODHD_API_KEY   EODHD market data (optional)`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: built-in defaults plus environment)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log collaborator calls to stderr")

	root.AddCommand(newTenureCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newChatCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig keeps logs off stdout, which belongs to the answers.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Log.Output = "stderr"
	if verbose {
		cfg.Log.Level = "debug"
	} else {
		cfg.Log.Level = "error"
	}
	return cfg, nil
}

func openAssistant() (*di.Assistant, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := di.InitializeAssistant(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return a, nil
}
