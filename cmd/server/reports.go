package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/Jornada/internal/models"
	"github.com/soaringjerry/Jornada/internal/services"
	"github.com/soaringjerry/Jornada/internal/utils"
)

// reportsEnv is what every reports subcommand works with.
type reportsEnv struct {
	reports *services.ReportService
	exports *services.ExportService
	locale  string
}

// withReports opens the configured store for the duration of fn.
func withReports(cmd *cobra.Command, opts *rootOptions, fn func(env *reportsEnv) error) error {
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
	locale, _ := cmd.Flags().GetString("lang")
	if locale == "" {
		locale = cfg.DefaultLocale
	}
	return fn(&reportsEnv{
		reports: reports,
		exports: services.NewExportService(reports, cfg.Location()),
		locale:  locale,
	})
}

func newReportsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect and manage stored player reports",
	}
	cmd.PersistentFlags().String("lang", "", "locale for labels and dates (pt or en)")
	cmd.AddCommand(
		newReportsListCmd(opts),
		newReportsShowCmd(opts),
		newReportsExportCmd(opts),
		newReportsDeleteCmd(opts),
		newReportsClearCmd(opts),
	)
	return cmd
}

func newReportsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReports(cmd, opts, func(env *reportsEnv) error {
				list, err := env.reports.List(cmd.Context())
				if err != nil {
					return err
				}
				return printReportTable(cmd.OutOrStdout(), list, env.locale)
			})
		},
	}
}

func printReportTable(w io.Writer, list []models.Report, locale string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\t%s\t%s\n", utils.T(locale, "report.date"), utils.T(locale, "report.player"), utils.T(locale, "report.dominant"))
	for _, r := range list {
		dominant := r.Diagnosis.DominantProfile
		if r.Diagnosis.DominantTag != "" {
			dominant = services.ProfileLabel(r.Diagnosis.DominantTag, locale)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Date.Format("2006-01-02 15:04"), r.PlayerName, dominant)
	}
	return tw.Flush()
}

func newReportsShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReports(cmd, opts, func(env *reportsEnv) error {
				r, err := env.reports.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				b, err := services.ExportReportJSON(*r)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return err
			})
		},
	}
}

func newReportsExportCmd(opts *rootOptions) *cobra.Command {
	var format, out string
	var all bool
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export one report (json, csv, html) or all reports (--all, json)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("pass exactly one of a report id or --all")
			}
			return withReports(cmd, opts, func(env *reportsEnv) error {
				var res *services.ExportResult
				var err error
				if all {
					res, err = env.exports.ExportAll(cmd.Context(), env.locale)
				} else {
					res, err = env.exports.ExportReport(cmd.Context(), args[0], format, env.locale)
				}
				if err != nil {
					return err
				}
				return writeExport(cmd, res, out)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, csv or html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; '.' uses the suggested filename, empty writes to stdout")
	cmd.Flags().BoolVar(&all, "all", false, "export every report as one JSON file")
	return cmd
}

func writeExport(cmd *cobra.Command, res *services.ExportResult, out string) error {
	switch out {
	case "":
		_, err := cmd.OutOrStdout().Write(res.Data)
		return err
	case ".":
		out = res.Filename
	}
	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(res.Data))
	return nil
}

func newReportsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReports(cmd, opts, func(env *reportsEnv) error {
				if err := env.reports.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newReportsClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear reports without --yes")
			}
			return withReports(cmd, opts, func(env *reportsEnv) error {
				if err := env.reports.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "all reports cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}
