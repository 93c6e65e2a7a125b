package cli

import (
	"fmt"
	"os"
	"time"

	"nimbus-pos/internal/importer"
	categoryrepo "nimbus-pos/internal/repository/category"
	productrepo "nimbus-pos/internal/repository/product"
	storerepo "nimbus-pos/internal/repository/store"
	productsvc "nimbus-pos/internal/service/product"

	"github.com/spf13/cobra"
)

func newImportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import data into a store",
	}
	cmd.AddCommand(newImportProductsCommand(opts))
	return cmd
}

func newImportProductsCommand(opts *RootOptions) *cobra.Command {
	var storeID string

	cmd := &cobra.Command{
		Use:   "products <file.csv>",
		Short: "Create or update products from a CSV file",
		Long: `Create or update products from a CSV file, matching existing products by SKU.

Columns: name, price (required), sku, barcode, category, cost_price, stock,
description, image_url, active. Unknown categories are created.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			ctx := cmd.Context()
			pool, err := opts.connect(ctx)
			if err != nil {
				return fmt.Errorf("connect db: %w", err)
			}
			defer pool.Close()

			logger := opts.logger(cmd)
			st, err := storerepo.NewPostgres(pool, logger).GetByID(ctx, storeID)
			if err != nil {
				return fmt.Errorf("load store %s: %w", storeID, err)
			}

			products := productsvc.New(productrepo.NewPostgres(pool, logger), 0)
			imp := importer.NewCSVImporter(f, products, categoryrepo.NewPostgres(pool, logger), *st)

			start := time.Now()
			count, err := imp.Run(ctx)
			if err != nil {
				return fmt.Errorf("import stopped after %d products: %w", count, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products into store %s in %s\n", count, st.Name, time.Since(start).Truncate(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&storeID, "store", "", "store id to import into")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}
