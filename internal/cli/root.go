// Package cli holds the kavyactl operator commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kavyapath/kavyapath-web/internal/apiclient"
	"github.com/kavyapath/kavyapath-web/internal/config"
)

// RootCmd is the kavyactl entry point
var RootCmd = &cobra.Command{
	Use:           "kavyactl",
	Short:         "Operator tool for the Kavyapath web server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var rootArgs struct {
	configPath string
	apiURL     string
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&rootArgs.configPath, "config", "c", "configs/config.local.yaml", "config file path")
	RootCmd.PersistentFlags().StringVar(&rootArgs.apiURL, "api-url", "", "override api.base_url")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootArgs.configPath)
	if err != nil {
		return nil, err
	}
	if rootArgs.apiURL != "" {
		cfg.API.BaseURL = rootArgs.apiURL
	}
	return cfg, nil
}

func newClient() (*apiclient.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return apiclient.New(cfg.API), cfg, nil
}
