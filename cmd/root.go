package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "library-web",
	Short: "Storefront and admin web client for the library API",
	Long: `library-web serves the browser storefront and the admin pages of the
library lending service. Every page is rendered on the server from calls to
the library API.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("api", "", "library API base URL (overrides API_BASE_URL)")
}

func apiOverride(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString("api")
	return v
}
