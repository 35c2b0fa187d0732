package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kavyapath/kavyapath-web/internal/assistant"
	"github.com/kavyapath/kavyapath-web/internal/database"
	"github.com/kavyapath/kavyapath-web/internal/migration"
	"github.com/kavyapath/kavyapath-web/internal/repository"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask the assistant about a poem",
	RunE:  runAsk,
}

var askArgs struct {
	title string
	file  string
	query string
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached answers older than --older-than",
	RunE:  runCachePurge,
}

var purgeOlderThan time.Duration

func init() {
	askCmd.Flags().StringVarP(&askArgs.title, "title", "t", "", "poem title")
	askCmd.Flags().StringVarP(&askArgs.file, "file", "f", "", "file holding the poem text")
	askCmd.Flags().StringVarP(&askArgs.query, "query", "q", "", "question")
	cachePurgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 7*24*time.Hour, "maximum age to keep")

	cacheCmd.AddCommand(cachePurgeCmd)
	RootCmd.AddCommand(askCmd)
	RootCmd.AddCommand(cacheCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askArgs.title == "" || askArgs.file == "" || askArgs.query == "" {
		return fmt.Errorf("missing required flags")
	}
	content, err := os.ReadFile(askArgs.file)
	if err != nil {
		return fmt.Errorf("failed to read poem: %w", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	llm, err := assistant.NewOpenAILLM(assistant.Settings{
		BaseURL: cfg.Assistant.BaseURL,
		APIKey:  cfg.Assistant.APIKey,
		Model:   cfg.Assistant.Model,
	})
	if err != nil {
		return err
	}
	answer, err := assistant.NewAnalyzer(llm, assistant.WithTimeout(cfg.Assistant.Timeout)).
		Analyze(cmd.Context(), askArgs.title, string(content), askArgs.query)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.Database, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := migration.Run(db); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	n, err := repository.NewAnalysisRepository(db).Purge(cmd.Context(), purgeOlderThan)
	if err != nil {
		return fmt.Errorf("failed to purge: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "purged %d cached answers\n", n)
	return nil
}
