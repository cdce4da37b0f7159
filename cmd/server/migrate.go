package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soaringjerry/Jornada/internal/kv"
	"github.com/soaringjerry/Jornada/internal/services"
)

// newImportCmd loads reports saved by the browser-only version of the game (a
// localStorage dump or a copied report array) into the configured store.
func newImportCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <dump.json|->",
		Short: "Import reports from a browser storage dump or an exported report file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readDump(cmd, args[0])
			if err != nil {
				return err
			}
			if dryRun {
				return previewDump(cmd, raw)
			}
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			reports, s, err := openReports(cmd.Context(), cfg, log, nil)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			res, err := reports.Import(cmd.Context(), raw)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			log.Info("reports imported",
				zap.String("source", args[0]),
				zap.String("store", cfg.Store.Driver),
				zap.Int("imported", res.Imported),
				zap.Int("skipped", res.Skipped))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d reports, skipped %d malformed entries\n", res.Imported, res.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "decode the dump and report counts without writing")
	return cmd
}

func readDump(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	return raw, nil
}

// previewDump runs the same decoding as Import against a throwaway store.
func previewDump(cmd *cobra.Command, raw []byte) error {
	reports := services.NewReportService(services.NewSlotReportStore(kv.NewMemory(), "", nil), nil, nil)
	res, err := reports.Import(cmd.Context(), raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "would import %d reports, skip %d malformed entries\n", res.Imported, res.Skipped)
	return nil
}
