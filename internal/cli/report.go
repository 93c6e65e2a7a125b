package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	salerepo "nimbus-pos/internal/repository/sale"
	storerepo "nimbus-pos/internal/repository/store"
	reportsvc "nimbus-pos/internal/service/report"

	"github.com/spf13/cobra"
)

// ValidReportFormats lists the output formats of report commands.
var ValidReportFormats = []string{"csv", "json"}

type reportFlags struct {
	storeID  string
	start    string
	end      string
	format   string
	timezone string
}

func newReportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export store reports",
	}
	cmd.AddCommand(newSalesReportCommand(opts))
	return cmd
}

func newSalesReportCommand(opts *RootOptions) *cobra.Command {
	flags := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Write the sales report of a store to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(flags.format) {
				return fmt.Errorf("invalid format %q: must be one of %v", flags.format, ValidReportFormats)
			}
			loc, err := time.LoadLocation(flags.timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone %q: %w", flags.timezone, err)
			}

			ctx := cmd.Context()
			pool, err := opts.connect(ctx)
			if err != nil {
				return fmt.Errorf("connect db: %w", err)
			}
			defer pool.Close()

			logger := opts.logger(cmd)
			st, err := storerepo.NewPostgres(pool, logger).GetByID(ctx, flags.storeID)
			if err != nil {
				return fmt.Errorf("load store %s: %w", flags.storeID, err)
			}

			svc := reportsvc.New(salerepo.NewPostgres(pool, logger), loc)
			r, err := svc.ParseRange(flags.start, flags.end)
			if err != nil {
				return err
			}
			rep, err := svc.Sales(ctx, *st, r)
			if err != nil {
				return fmt.Errorf("build report: %w", err)
			}
			return writeReport(cmd.OutOrStdout(), svc, rep, flags.format)
		},
	}

	cmd.Flags().StringVar(&flags.storeID, "store", "", "store id")
	cmd.Flags().StringVar(&flags.start, "start", "", "first day, YYYY-MM-DD (default seven days ago)")
	cmd.Flags().StringVar(&flags.end, "end", "", "last day, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "csv", "output format (csv|json)")
	cmd.Flags().StringVar(&flags.timezone, "tz", "UTC", "timezone used for day boundaries")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}

func writeReport(w io.Writer, svc *reportsvc.Service, rep *reportsvc.Report, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return svc.WriteCSV(w, rep)
}

func isValidFormat(format string) bool {
	for _, f := range ValidReportFormats {
		if f == format {
			return true
		}
	}
	return false
}
