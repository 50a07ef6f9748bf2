package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"casegen/internal/core"
	"casegen/internal/document"
	"casegen/internal/export"
	"casegen/internal/llm"
	"casegen/internal/ui"
)

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the requirement lines found in a document",
		Long: "Decode a document (" + strings.Join(document.SupportedFormats(), ", ") +
			") and print the requirement lines that would be sent for generation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			text, err := document.Decode(cmd.Context(), filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
			requirements, err := core.ExtractRequirements(text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, r := range requirements {
				fmt.Fprintf(out, "%2d. %s\n", i+1, r)
			}
			return nil
		},
	}
}

func renderCmd() *cobra.Command {
	var (
		formats []string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "render <suite.yaml|suite.json>",
		Short: "Export a saved test suite in other formats",
		Long:  "Render a suite previously saved as YAML or JSON. Use --out - to print a single format to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseFormats(formats)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			suite, err := export.DecodeSuite(filepath.Base(args[0]), data)
			if err != nil {
				return err
			}

			now := time.Now()
			out := cmd.OutOrStdout()
			if outDir == "-" {
				if len(parsed) != 1 {
					return fmt.Errorf("--out - requires exactly one format, got %d", len(parsed))
				}
				body, err := export.Render(parsed[0], suite, now)
				if err != nil {
					return err
				}
				_, err = out.Write(body)
				return err
			}

			for _, f := range parsed {
				written, err := export.WriteArtifact(outDir, f, suite, now)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.SuccessMsg("Saved %s", written))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"txt"}, "Output formats ("+export.FormatList()+")")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory, or - for stdout")
	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the known OpenRouter models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models := llm.DefaultModels()
			names := llm.ModelNames()

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				m := models[name]
				rows = append(rows, []string{m.Name, strconv.Itoa(m.ContextWindow), m.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"Model", "Context", "Description"}, rows))
			return nil
		},
	}
}
