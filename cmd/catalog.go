package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"library-web/internal/api"
	"library-web/internal/config"
	"library-web/internal/logger"
	"library-web/internal/services"
	"library-web/internal/views"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the catalog anonymously",
	Long: `Browse the catalog anonymously and print it as a table. Usage:

	library-web catalog --category Sci-Fi --sort year --pages 2
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if base := apiOverride(cmd); base != "" {
			cfg.APIBaseURL = base
		}
		flags := cmd.Flags()
		category, _ := flags.GetString("category")
		author, _ := flags.GetString("author")
		year, _ := flags.GetString("year")
		sort, _ := flags.GetString("sort")
		pages, _ := flags.GetInt("pages")
		if pages < 1 {
			return fmt.Errorf("--pages must be at least 1, got %d", pages)
		}

		log := logger.InitLogger(cfg.LogLevel, cfg.LogFormat)
		client, err := api.New(cfg.APIBaseURL, nil, log)
		if err != nil {
			return err
		}
		apiSvc := services.NewAPI(client, log)

		view := views.NewCatalogView(apiSvc.Books, apiSvc.Orders, log)
		defer view.Close()

		ctx := cmd.Context()
		view.SetFilters(ctx, views.Filters{Category: category, Author: author, Year: year, Sort: sort})
		for i := 1; i < pages && view.Snapshot().HasNext; i++ {
			view.LoadMore(ctx)
		}

		snap := view.Snapshot()
		if snap.Error != "" {
			return errors.New(snap.Error)
		}
		return printCatalog(cmd.OutOrStdout(), snap)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().String("category", "", "filter by category")
	catalogCmd.Flags().String("author", "", "filter by author")
	catalogCmd.Flags().String("year", "", "filter by publication year")
	catalogCmd.Flags().String("sort", "title", "sort key: title, author or year")
	catalogCmd.Flags().Int("pages", 1, "number of pages to fetch")
}

func printCatalog(out io.Writer, snap views.CatalogSnapshot) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCATEGORY\tYEAR\tSTATUS\tPRICE")
	for _, b := range snap.Books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			b.ID, b.Title, b.Author, b.Category, b.Year, b.Status.Label(), formatPrice(b.PurchasePrice))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if snap.HasNext {
		_, err := fmt.Fprintln(out, "More books are available; raise --pages to see them.")
		return err
	}
	return nil
}

func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}
