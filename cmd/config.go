package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/ingestor/internal/config"
)

// configKeys lists the settings in display order.
var configKeys = []string{
	"logging.log_level",
	"general.import_directory",
	"general.scan_interval",
	"general.lock_file",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ingestor configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		if src := cfg.Source(); src != "" {
			fmt.Fprintf(out, "# from %s\n", src)
		}
		for _, k := range configKeys {
			v, _ := cfg.Get(k)
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "⚠ %v\n", err)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			switch {
			case err == nil:
				cfg = c
			case errors.Is(err, fs.ErrNotExist):
				// First write to an explicit --config path.
				cfg = cfgpkg.Defaults()
			default:
				return err
			}
		}
		if err := cfg.Set(key, val); err != nil {
			return err
		}
		if err := cfg.CheckValue(key); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
