package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"medcabinet/m/domain"
	"medcabinet/m/internal/report"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "medcabinet",
		Short:        "Track medicine batches against a product catalog",
		SilenceUsage: true,
	}
	root.AddCommand(newCatalogCmd(a), newInventoryCmd(a), newReportCmd(a))
	return root
}

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "catalog", Short: "Manage known products"}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <barcode> <name> [description]",
		Short: "Add a product",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := ""
			if len(args) == 3 {
				desc = args[2]
			}
			return a.catalog.AddProduct(cmd.Context(), args[0], args[1], desc)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <barcode>",
		Short: "Delete a product; recorded batches keep their copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.catalog.DeleteProduct(cmd.Context(), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List products by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.catalog.ListProducts(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BARCODE\tNAME\tDESCRIPTION")
			for _, p := range products {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Barcode, p.Name, p.Description)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Import products from CSV; bad lines are skipped and reported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.transfer.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d products\n", res.Imported)
			if len(res.Errors) > 0 {
				fmt.Fprintf(out, "Skipped %d lines:\n", len(res.Errors))
				for _, msg := range res.Messages() {
					fmt.Fprintf(out, "  %s\n", msg)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Export products as CSV (use - for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" {
				return a.transfer.ExportCatalog(cmd.Context(), cmd.OutOrStdout())
			}
			if err := a.transfer.ExportFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog exported to %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func newInventoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "inventory", Short: "Manage tracked batches"}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <barcode> <YYYY-MM-DD>",
		Short: "Record a batch and print its id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := a.ledger.AddBatch(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			for _, w := range added.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Batch %d recorded\n", added.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: invalid batch id %q", domain.ErrValidation, args[0])
			}
			return a.ledger.DeleteBatch(cmd.Context(), id)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List batches by name with their expiry status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.ledger.ListBatches(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tBARCODE\tNAME\tDESCRIPTION\tEXP DATE\tSTATUS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Barcode, e.Name, e.Description, e.ExpDate, e.Status)
			}
			return tw.Flush()
		},
	})

	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the inventory report as PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := a.composer.Compose(cmd.Context(), a.now())
			if err != nil {
				return err
			}
			if out == "-" {
				return a.renderer.Render(cmd.OutOrStdout(), rep)
			}
			if err := report.SaveFile(out, a.renderer, rep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inventory report saved as %s (%d rows, %d expired)\n", out, len(rep.Rows), rep.ExpiredCount())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", a.cfg.ReportPath, "destination file, - for stdout")
	return cmd
}
