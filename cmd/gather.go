package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/ingestor/internal/filetype"
	"github.com/KaramelBytes/ingestor/internal/gatherer"
	"github.com/KaramelBytes/ingestor/internal/utils"
)

var gatherFormat string

var gatherCmd = &cobra.Command{
	Use:   "gather [dir]",
	Short: "Run a single gather pass and print the manifest",
	Long: `Scan a directory once and print the manifest of recognized documents.
Without an argument the configured import directory is scanned.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch gatherFormat {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("invalid --format: %s (use text, json or yaml)", gatherFormat)
		}

		var dir string
		if len(args) == 1 {
			dir = args[0]
		} else {
			c, err := requireConfig()
			if err != nil {
				return err
			}
			dir = c.General.ImportDirectory
		}

		logger, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer logger.Sync()

		m, err := gatherer.New(logger).Gather(cmd.Context(), dir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch gatherFormat {
		case "json":
			if err := utils.WriteJSON(out, m); err != nil {
				return err
			}
		case "yaml":
			b, err := yaml.Marshal(m)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			fmt.Fprint(out, string(b))
		default:
			printManifest(out, m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gatherCmd)
	gatherCmd.Flags().StringVarP(&gatherFormat, "format", "f", "text", "output format: text, json or yaml")
}

type palette struct {
	dir, ok, dim *color.Color
}

func newPalette(w io.Writer) palette {
	p := palette{
		dir: color.New(color.FgCyan, color.Bold),
		ok:  color.New(color.FgGreen),
		dim: color.New(color.Faint),
	}
	f, isFile := w.(*os.File)
	if !isFile || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		p.dir.DisableColor()
		p.ok.DisableColor()
		p.dim.DisableColor()
	}
	return p
}

func printManifest(w io.Writer, m gatherer.Manifest) {
	p := newPalette(w)
	if m.Len() == 0 {
		fmt.Fprintln(w, "(no recognized documents)")
		return
	}
	for _, dir := range m.Dirs() {
		p.dir.Fprintln(w, dir)
		for _, f := range m[dir] {
			fmt.Fprintf(w, "  %-5s %s ", f.DocumentType, f.ContentHash)
			p.dim.Fprintln(w, f.Name)
		}
	}
	counts := m.CountByType()
	parts := make([]string, 0, 3)
	for _, t := range []filetype.DocumentType{filetype.PDF, filetype.Text, filetype.Word} {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, t))
		}
	}
	p.ok.Fprintf(w, "✓ %d files in %d directories (%s)\n", m.Len(), len(m), strings.Join(parts, ", "))
}
