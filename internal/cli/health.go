package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kavyapath/kavyapath-web/internal/service"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the Kavyapath API answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("%s unreachable: %w", cfg.API.BaseURL, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", cfg.API.BaseURL)
		return nil
	},
}

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Print the sitemap the server would serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}
		body, err := service.NewStoryService(client, cfg.Server.PublicURL).Sitemap(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to build sitemap: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(body)
		return err
	},
}

func init() {
	RootCmd.AddCommand(healthCmd)
	RootCmd.AddCommand(sitemapCmd)
}
