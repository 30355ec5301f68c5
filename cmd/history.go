package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tu613/vet-learning-app/internal/screens/chat"
	"github.com/tu613/vet-learning-app/internal/screens/history"
	"github.com/tu613/vet-learning-app/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past practice sessions and their feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")
		since, _ := cmd.Flags().GetDuration("since")
		full, _ := cmd.Flags().GetBool("full")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		opts := store.QueryOpts{Limit: limit}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		entries, err := e.store.PracticeHistory().QueryPracticeLogs(cmd.Context(), user, opts)
		if err != nil {
			return fmt.Errorf("query practice log: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No practice sessions recorded yet.")
			return nil
		}

		if !full {
			fmt.Printf("%-19s  %-20s  %-11s  %-32s  %5s\n", "Time", "User", "Role", "Case", "Turns")
			fmt.Println(strings.Repeat("─", 96))
			for _, en := range entries {
				fmt.Printf("%-19s  %-20s  %-11s  %-32s  %5d\n",
					en.Timestamp.Local().Format("2006-01-02 15:04:05"),
					truncate(en.UserName, 20),
					en.UserRole,
					truncate(en.CaseName, 32),
					len(en.ChatHistory))
			}
			return nil
		}

		sep := strings.Repeat("─", 60)
		for i, en := range entries {
			if i > 0 {
				fmt.Println()
			}
			fmt.Println(sep)
			fmt.Printf("%s  %s (%s)  %s\n",
				en.Timestamp.Local().Format("2006-01-02 15:04"), en.UserName, en.UserRole, en.CaseName)
			fmt.Println(sep)
			for _, line := range chat.TranscriptLines(history.TranscriptOf(en), 80) {
				fmt.Println(line)
			}
			fmt.Println(sep)
			fmt.Println(en.Feedback)
			if en.Model != "" {
				fmt.Printf("\n(evaluated by %s)\n", en.Model)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringP("user", "u", "", "Only show sessions for this user name")
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	historyCmd.Flags().Duration("since", 0, "Only show sessions newer than this (e.g. 168h)")
	historyCmd.Flags().Bool("full", false, "Print the transcript and feedback of each session")
}
