package main

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"casegen/internal/core"
	"casegen/internal/export"
	"casegen/internal/llm"
	"casegen/internal/ui"
)

type generateFlags struct {
	formats  []string
	outDir   string
	provider string
	model    string
	copy     bool
}

func generateCmd(debug *bool) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate <file.docx|file.doc>",
		Short: "Extract requirements from a document and generate test cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], flags, *debug)
		},
	}
	cmd.Flags().StringSliceVarP(&flags.formats, "format", "f", []string{"txt", "csv"}, "Artifact formats ("+export.FormatList()+")")
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", "", "Output directory (default CASEGEN_OUTPUT_DIR or .)")
	cmd.Flags().StringVar(&flags.provider, "provider", "", "Generation provider: openrouter, anthropic or offline")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Model to use (default DEFAULT_MODEL)")
	cmd.Flags().BoolVar(&flags.copy, "copy", false, "Copy the text report to the clipboard")
	return cmd
}

func runGenerate(cmd *cobra.Command, path string, flags generateFlags, debug bool) error {
	formats, err := parseFormats(flags.formats)
	if err != nil {
		return err
	}

	cfg, err := core.LoadConfig()
	if err != nil {
		return err
	}
	if flags.provider != "" {
		cfg.Provider = flags.provider
	}
	if flags.outDir != "" {
		cfg.OutputDir = flags.outDir
	}

	logger := cliLogger(cfg, debug)

	ctx := cmd.Context()
	gateway, err := core.NewGateway(ctx, cfg, flags.model)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)

	controller, err := core.NewController(gateway,
		core.WithLogger(logger),
		core.WithObserver(ui.NewProgressObserver(cmd.ErrOrStderr())),
		core.WithProgressTick(cfg.ProgressTick),
	)
	if err != nil {
		return err
	}
	defer controller.Close()

	if err := controller.SelectFile(name, mime.TypeByExtension(filepath.Ext(name)), data); err != nil {
		return err
	}
	if err := controller.Generate(ctx); err != nil {
		if llm.IsRetryable(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.WarnMsg("The model provider may be busy; running the command again may succeed"))
		}
		return err
	}

	snap := controller.Snapshot()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprint(out, ui.RunSummary(snap.RunID, snap.FileName, len(snap.Requirements), time.Now()))
	fmt.Fprintln(out, ui.SummaryTable(snap.Suite))

	// Artifacts and clipboard are best-effort; the run already succeeded.
	for _, format := range formats {
		written, err := controller.SaveArtifact(cfg.OutputDir, format)
		if err != nil {
			fmt.Fprintln(out, ui.WarnMsg("%v", err))
			continue
		}
		fmt.Fprintln(out, ui.SuccessMsg("Saved %s", written))
	}

	if flags.copy {
		copied, err := controller.CopyReport()
		switch {
		case err != nil:
			fmt.Fprintln(out, ui.WarnMsg("%v", err))
		case copied:
			fmt.Fprintln(out, ui.SuccessMsg("Report copied to clipboard"))
		default:
			fmt.Fprintln(out, ui.WarnMsg("Could not copy the report to the clipboard"))
		}
	}
	return nil
}

// cliLogger keeps the JSON log quiet unless the user asked for it, so it
// does not interleave with the progress bar. It also becomes the slog
// default used by the LLM clients.
func cliLogger(cfg *core.Config, debug bool) core.Logger {
	level := cfg.LogLevel
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") != "1" {
		level = "warn"
	}
	if debug {
		level = "debug"
	}
	logger := core.NewSlog(os.Stderr, level)
	slog.SetDefault(logger)
	return core.FromSlog(logger)
}

func parseFormats(values []string) ([]export.Format, error) {
	formats := make([]export.Format, 0, len(values))
	seen := make(map[export.Format]bool)
	for _, v := range values {
		f, err := export.ParseFormat(v)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}
