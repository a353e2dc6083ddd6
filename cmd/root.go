package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/ingestor/internal/config"
	"github.com/KaramelBytes/ingestor/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration; nil when loading failed
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "ingestor",
	Short: "Ingestor: scan an import directory for documents to ingest",
	Long: `Ingestor walks an import directory, recognizes PDF, plain text and Word
documents by their content, fingerprints them, and reports what it found
grouped by directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.ingestor/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it themselves
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
}

// requireConfig returns the loaded configuration after validating it.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger. --debug overrides the configured level.
func newLogger(w io.Writer) (*zap.Logger, error) {
	level := "INFO"
	if cfg != nil && cfg.Logging.LogLevel != "" {
		level = cfg.Logging.LogLevel
	}
	if debug {
		level = "DEBUG"
	}
	return logging.New(level, w)
}
