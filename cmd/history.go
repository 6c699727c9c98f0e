package cmd

import (
	"context"
	"strings"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/history"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recently finished runs",
	Run: func(cmd *cobra.Command, _ []string) {
		listHistory(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", history.DefaultLimit, "how many runs to print")
}

func listHistory(cmd *cobra.Command) {
	log, config := setup()

	path := ""
	if config.History != nil {
		path = strings.TrimSpace(config.History.SQLitePath)
	}
	if path == "" {
		log.Fatal("run history is disabled", zap.String("hint", "set history.sqlite-path"))
	}

	store, err := history.NewSQLiteStore(path)
	if err != nil {
		log.Fatal("opening run history", zap.Error(err))
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")

	entries, err := store.Recent(context.Background(), limit)
	if err != nil {
		log.Fatal("listing runs", zap.Error(err))
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	if err := writeJSON(cmd.OutOrStdout(), entries); err != nil {
		log.Fatal("writing runs", zap.Error(err))
	}
}
