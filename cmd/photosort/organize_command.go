package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"photosort/internal/catalog"
	"photosort/internal/config"
	"photosort/internal/logging"
	"photosort/internal/organizer"
)

func newOrganizeCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		inputDir  string
		outputDir string
		workers   int
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Copy photos into <output>/<year>/<month>/<ext> by capture time",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Writer: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			input, err := config.ExpandPath(inputDir)
			if err != nil {
				return err
			}
			output, err := config.ExpandPath(outputDir)
			if err != nil {
				return err
			}

			var store *catalog.Store
			if cfg.Catalog.Path != "" {
				store, err = catalog.Open(cfg.Catalog.Path)
				if err != nil {
					return fmt.Errorf("open catalog: %w", err)
				}
				defer store.Close()
			}

			effectiveWorkers := cfg.Organize.Workers
			if cmd.Flags().Changed("workers") {
				effectiveWorkers = workers
			}

			runID := uuid.NewString()
			org, err := organizer.New(organizer.Options{
				Source:             input,
				Dest:               output,
				Workers:            effectiveWorkers,
				SidecarSuffix:      cfg.Organize.SidecarSuffix,
				ExcludedExtensions: cfg.ExcludedExtensionSet(),
				MaxCollisionProbes: cfg.Organize.MaxCollisionProbes,
				RunID:              runID,
				Catalog:            store,
				Logger:             logger,
			})
			if err != nil {
				return err
			}

			logger.Info("starting photo organizer",
				logging.String("input", input),
				logging.String("output", output),
				logging.String(logging.FieldRunID, runID),
			)

			summary, err := org.Run(cmd.Context())
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory containing photos and sidecar metadata")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Destination root for the organized tree")
	cmd.Flags().IntVar(&workers, "workers", 0, "Placement worker count (0 means one per CPU)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the end-of-run summary table")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// renderSummary builds the fixed metric/value table shown after a run.
// Metric names stay left-aligned, counts right-aligned.
func renderSummary(summary organizer.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	counts := []struct {
		name  string
		value int64
	}{
		{"Placed", summary.Placed},
		{"Failed", summary.Failed},
		{"Resolved via sidecar", summary.FromSidecar},
		{"Resolved via EXIF", summary.FromEmbedded},
		{"Resolved via file time", summary.FromFileTime},
		{"Sidecars indexed", summary.SidecarsIndexed},
		{"Sidecars skipped", summary.SidecarsSkipped},
	}
	for _, c := range counts {
		tw.AppendRow(table.Row{c.name, strconv.FormatInt(c.value, 10)})
	}
	tw.AppendRow(table.Row{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()})

	return tw.Render()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the photosort version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "photosort", version)
		},
	}
}

var version = "dev"
