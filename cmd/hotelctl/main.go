package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alex-user-go/hotelsearch/internal/client"
)

func main() {
	root := &cobra.Command{
		Use:           "hotelctl",
		Short:         "Search hotels through a running hotelsearch server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("server", envOr("HOTELSEARCH_SERVER", "http://localhost:3000"), "API server base URL")
	root.PersistentFlags().Bool("json", false, "Print raw JSON instead of text")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "Request timeout")

	root.AddCommand(locationsCmd())
	root.AddCommand(searchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newClient builds an API client from the persistent flags.
func newClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return client.New(server, &http.Client{Timeout: timeout})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
