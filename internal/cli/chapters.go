package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kavyapath/kavyapath-web/internal/session"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters",
	Short: "List or add chapters",
}

var chaptersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every chapter",
	RunE:  runChaptersList,
}

var chaptersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a chapter",
	RunE:  runChaptersAdd,
}

var chapterAddArgs struct {
	title string
	token string
}

func init() {
	chaptersAddCmd.Flags().StringVarP(&chapterAddArgs.title, "title", "t", "", "chapter title")
	chaptersAddCmd.Flags().StringVar(&chapterAddArgs.token, "token", os.Getenv("KAVYAPATH_TOKEN"), "API token of a signed-in user")

	chaptersCmd.AddCommand(chaptersListCmd)
	chaptersCmd.AddCommand(chaptersAddCmd)
	RootCmd.AddCommand(chaptersCmd)
}

func runChaptersList(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	res, err := client.Chapters(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch chapters: %w", err)
	}
	chapters, ok := res.Unwrap()
	if !ok {
		return fmt.Errorf("api refused: %s", res.Message())
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE")
	for _, ch := range chapters {
		fmt.Fprintf(w, "%s\t%s\n", ch.ID, ch.Title)
	}
	return w.Flush()
}

func runChaptersAdd(cmd *cobra.Command, args []string) error {
	if chapterAddArgs.title == "" {
		return fmt.Errorf("title is required")
	}
	if chapterAddArgs.token == "" {
		return fmt.Errorf("token is required")
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}
	res, err := client.CreateChapter(cmd.Context(), session.New(chapterAddArgs.token), chapterAddArgs.title)
	if err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	ch, ok := res.Unwrap()
	if !ok {
		return fmt.Errorf("api refused: %s", res.Message())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s %s\n", ch.ID, ch.Title)
	return nil
}
