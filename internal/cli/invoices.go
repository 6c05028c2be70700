package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
)

var invoicesCmd = &cobra.Command{
	Use:     "invoices",
	Aliases: []string{"inv"},
	Short:   "Manage invoices",
	Long:    `Create, list, show, export, import and delete invoices.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		invoices, err := appInstance.InvoiceService.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Fprintln(out, "No invoices found")
			return nil
		}

		currency := appInstance.Exporter.Currency
		fmt.Fprintf(out, "%-24s %-24s %-12s %6s %14s\n", "Number", "Customer", "Date", "Items", "Total")
		fmt.Fprintln(out, strings.Repeat("-", 84))
		for _, inv := range invoices {
			fmt.Fprintf(out, "%-24s %-24s %-12s %6d %14s\n",
				inv.InvoiceNumber,
				truncate(inv.DisplayName(), 24),
				inv.CreatedAt.Format("2006-01-02"),
				len(inv.Items),
				domain.FormatMoney(inv.TotalAmount, currency),
			)
		}

		summary := domain.Summarize(invoices)
		fmt.Fprintf(out, "\nTotal: %d invoice(s), %s\n", summary.Count, domain.FormatMoney(summary.Total, currency))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [number_or_id]",
	Short: "Show invoice details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := resolveInvoice(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		plain, _ := cmd.Flags().GetBool("plain")
		return printPreview(cmd.OutOrStdout(), inv, plain)
	},
}

var invoicesNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an invoice from flags",
	Long: `Create an invoice from flags. Without --save the invoice is only previewed.

Examples:
  invoicer invoices new --customer "Mona" --phone 0100 --address "12 Nile St" \
    --item "Cotton shirt:2:150" --item "Belt:1:80" --shipping 30 --save
  invoicer invoices new --customer "Mona" --phone 0100 --address "12 Nile St" \
    --item "Scarf:1:95" --export pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()

		customer, _ := flags.GetString("customer")
		phone, _ := flags.GetString("phone")
		phone2, _ := flags.GetString("phone2")
		address, _ := flags.GetString("address")
		notes, _ := flags.GetString("notes")
		shippingStr, _ := flags.GetString("shipping")
		itemFlags, _ := flags.GetStringArray("item")
		save, _ := flags.GetBool("save")
		formatStr, _ := flags.GetString("export")

		shipping, err := parseAmount(shippingStr)
		if err != nil {
			return fmt.Errorf("invalid shipping: %w", err)
		}
		items := make([]itemFlag, 0, len(itemFlags))
		for _, s := range itemFlags {
			item, err := parseItemFlag(s)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		ctrl := appInstance.Controller
		if err := ctrl.NewInvoice(); err != nil {
			return err
		}
		defer ctrl.BackToList()

		if err := ctrl.UpdateDetails(domain.Details{
			CustomerName:   customer,
			PrimaryPhone:   phone,
			SecondaryPhone: phone2,
			Address:        address,
			Notes:          notes,
		}); err != nil {
			return err
		}
		if err := ctrl.SetShipping(shipping); err != nil {
			return err
		}

		// A new invoice starts with one empty item; fill it before adding more
		for i, item := range items {
			id := ctrl.Current().Items[0].ID
			if i > 0 {
				if id, err = ctrl.AddItem(); err != nil {
					return err
				}
			}
			if err := ctrl.UpdateItem(id, item.description, item.quantity, item.unitPrice); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if save {
			if err := ctrl.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Invoice saved: %s\n", ctrl.Current().InvoiceNumber)
		}

		if formatStr != "" {
			format, err := export.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			path, err := ctrl.Export(ctx, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Exported to %s\n", path)
		}

		if !save && formatStr == "" {
			return printPreview(out, ctrl.Current(), true)
		}
		return nil
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete [number_or_id]",
	Short: "Delete a saved invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(fmt.Sprintf("Delete invoice %s (%s)?", inv.InvoiceNumber, inv.DisplayName())) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		if err := appInstance.InvoiceService.Delete(ctx, inv.ID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Invoice %s deleted\n", inv.InvoiceNumber)
		return nil
	},
}

var invoicesDuplicateCmd = &cobra.Command{
	Use:   "duplicate [number_or_id]",
	Short: "Copy a saved invoice under a new number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		ctrl := appInstance.Controller
		if err := ctrl.Duplicate(ctx, inv.ID); err != nil {
			return fmt.Errorf("failed to duplicate invoice: %w", err)
		}
		defer ctrl.BackToList()

		out := cmd.OutOrStdout()
		if save, _ := cmd.Flags().GetBool("save"); save {
			if err := ctrl.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Invoice %s duplicated as %s\n", inv.InvoiceNumber, ctrl.Current().InvoiceNumber)
			return nil
		}

		return printPreview(out, ctrl.Current(), true)
	},
}

var invoicesExportCmd = &cobra.Command{
	Use:   "export [number_or_id]",
	Short: "Export a saved invoice as PDF, PNG, JSON or XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		formatStr, _ := cmd.Flags().GetString("format")
		format, err := export.ParseFormat(formatStr)
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = appInstance.Controller.OutputDir()
		}

		path, err := appInstance.InvoiceService.Export(ctx, inv, format, dir)
		if err != nil {
			return fmt.Errorf("failed to export invoice: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", path)
		return nil
	},
}

var invoicesImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Read an exported JSON invoice under a new number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		f, err := os.Open(args[0])
		if err != nil {
			return &domain.ParseError{Err: err}
		}
		defer f.Close()

		inv, err := appInstance.InvoiceService.Import(ctx, f)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if save, _ := cmd.Flags().GetBool("save"); save {
			if err := appInstance.InvoiceService.Save(ctx, inv); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Imported as %s (%s)\n", inv.InvoiceNumber,
				domain.FormatMoney(inv.TotalAmount, appInstance.Exporter.Currency))
			return nil
		}

		return printPreview(out, inv, true)
	},
}

// resolveInvoice finds a saved invoice by number, falling back to its id
func resolveInvoice(ctx context.Context, ref string) (*domain.Invoice, error) {
	svc := appInstance.InvoiceService

	inv, err := svc.GetByNumber(ctx, ref)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	inv, err = svc.Get(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("invoice %q not found", ref)
	}
	return inv, err
}

// printPreview writes the document layout of inv, rendered as styled
// markdown unless plain is set
func printPreview(w io.Writer, inv *domain.Invoice, plain bool) error {
	p := appInstance.Exporter.Preview(inv)
	if plain {
		for _, line := range export.TextLines(p) {
			fmt.Fprintln(w, line)
		}
		return nil
	}

	rendered, err := glamour.Render(export.Markdown(p), "dark")
	if err != nil {
		return fmt.Errorf("failed to render invoice: %w", err)
	}
	fmt.Fprint(w, rendered)
	return nil
}

type itemFlag struct {
	description string
	quantity    decimal.Decimal
	unitPrice   decimal.Decimal
}

// parseItemFlag reads "description:quantity:unit_price". The description may
// itself contain colons; quantity and price are taken from the end.
func parseItemFlag(s string) (itemFlag, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return itemFlag{}, fmt.Errorf("invalid item %q: want description:quantity:unit_price", s)
	}
	n := len(parts)

	quantity, err := parseAmount(parts[n-2])
	if err != nil {
		return itemFlag{}, fmt.Errorf("invalid quantity in item %q: %w", s, err)
	}
	unitPrice, err := parseAmount(parts[n-1])
	if err != nil {
		return itemFlag{}, fmt.Errorf("invalid unit price in item %q: %w", s, err)
	}

	return itemFlag{
		description: strings.TrimSpace(strings.Join(parts[:n-2], ":")),
		quantity:    quantity,
		unitPrice:   unitPrice,
	}, nil
}

// parseAmount reads a non-negative decimal; blank means zero
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%q must not be negative", s)
	}
	return d, nil
}

// truncate truncates a string to the specified length with ellipsis
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesNewCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
	invoicesCmd.AddCommand(invoicesDuplicateCmd)
	invoicesCmd.AddCommand(invoicesExportCmd)
	invoicesCmd.AddCommand(invoicesImportCmd)

	// Show flags
	invoicesShowCmd.Flags().Bool("plain", false, "Print plain text instead of styled output")

	// New flags
	invoicesNewCmd.Flags().String("customer", "", "Customer name")
	invoicesNewCmd.Flags().String("phone", "", "Primary phone")
	invoicesNewCmd.Flags().String("phone2", "", "Secondary phone")
	invoicesNewCmd.Flags().String("address", "", "Delivery address")
	invoicesNewCmd.Flags().String("notes", "", "Notes printed on the invoice")
	invoicesNewCmd.Flags().String("shipping", "", "Shipping cost")
	invoicesNewCmd.Flags().StringArray("item", nil, "Line item as description:quantity:unit_price (repeatable)")
	invoicesNewCmd.Flags().Bool("save", false, "Save the invoice")
	invoicesNewCmd.Flags().String("export", "", "Also export as pdf, png, json or xlsx")

	// Delete flags
	invoicesDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	// Duplicate flags
	invoicesDuplicateCmd.Flags().Bool("save", false, "Save the copy")

	// Export flags
	invoicesExportCmd.Flags().StringP("format", "f", "pdf", "Export format (pdf, png, json, xlsx)")
	invoicesExportCmd.Flags().String("dir", "", "Output directory (defaults to the configured one)")

	// Import flags
	invoicesImportCmd.Flags().Bool("save", false, "Save the imported invoice")
}
