package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/patham9/YAN/internal/store"
)

var (
	journalLimit int
	journalRuns  bool
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Print recent journal entries",
	RunE:  runJournalCmd,
}

func init() {
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "number of rows to print")
	journalCmd.Flags().BoolVar(&journalRuns, "runs", false, "list runs instead of entries")
}

func runJournalCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := journalPath(cfg)
	if err != nil {
		return err
	}
	db, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if journalRuns {
		runs, err := db.RecentRuns(journalLimit)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Fprintf(out, "%s  %-9s %s records  started %s  %s\n",
				r.RunID, r.Status, humanize.Comma(int64(r.RecordCount)),
				humanize.Time(time.UnixMilli(r.StartedAt)), r.Label)
		}
		return nil
	}

	rows, err := db.RecentKnowledge(journalLimit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "journal is empty")
		return nil
	}
	for _, k := range rows {
		at := "eternal"
		if k.OccurrenceTime != nil {
			at = fmt.Sprintf("t=%d", *k.OccurrenceTime)
		}
		fmt.Fprintf(out, "%-8s %s%s %%%.2f;%.2f%%  %s  %s\n",
			k.Kind, k.Term, k.Punctuation, k.Frequency, k.Confidence, at,
			humanize.Time(time.UnixMilli(k.LoggedAt)))
	}
	return nil
}
