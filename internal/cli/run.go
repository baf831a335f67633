package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/patham9/YAN/internal/engine"
	"github.com/patham9/YAN/internal/transcript"
)

var (
	runJournal bool
	runTop     int
	runCycles  int
)

var runCmd = &cobra.Command{
	Use:   "run <events.jsonl>",
	Short: "Feed an event script and print the resulting concepts",
	Args:  cobra.ExactArgs(1),
	RunE:  runScript,
}

func init() {
	runCmd.Flags().BoolVar(&runJournal, "journal", false, "journal this run even when the config disables it")
	runCmd.Flags().IntVarP(&runTop, "top", "n", 20, "number of concepts to print")
	runCmd.Flags().IntVar(&runCycles, "cycles", 0, "reasoning cycles to run after the script")
}

func runScript(cmd *cobra.Command, args []string) error {
	entries, err := transcript.ParseFile(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, err := openSession(cfg, args[0], runJournal)
	if err != nil {
		return err
	}

	res, err := transcript.Replay(sess.engine, entries)
	if err != nil {
		sess.close(true)
		return err
	}
	defer sess.close(false)

	cycled := 0
	for range runCycles {
		cycled += sess.engine.Cycle()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d inputs, %d derivations, %d skipped, %d cycle derivations, t=%d\n",
		res.Inputs, res.Derivations, res.Skipped, cycled, sess.engine.Time())
	printConcepts(out, sess.engine.Concepts(""), runTop)
	return nil
}

func printConcepts(w io.Writer, concepts []engine.ConceptView, top int) {
	if top > 0 && len(concepts) > top {
		concepts = concepts[:top]
	}
	for _, c := range concepts {
		fmt.Fprintf(w, "\n%s  (priority %.3f, used %d)\n", c.Term, c.Priority, c.UseCount)
		if c.Belief != nil {
			fmt.Fprintf(w, "  belief     %s%s %%%.2f;%.2f%%\n", c.Belief.Term, c.Belief.Punctuation, c.Belief.Frequency, c.Belief.Confidence)
		}
		if c.BeliefSpike != nil && c.BeliefSpike.OccurrenceTime != nil {
			fmt.Fprintf(w, "  spike      %s%s %%%.2f;%.2f%% at %d\n", c.BeliefSpike.Term, c.BeliefSpike.Punctuation,
				c.BeliefSpike.Frequency, c.BeliefSpike.Confidence, *c.BeliefSpike.OccurrenceTime)
		}
		for _, imp := range c.Preconditions {
			fmt.Fprintf(w, "  learned    %s. %%%.2f;%.2f%% after %.1f\n", imp.Term, imp.Frequency, imp.Confidence, imp.Offset)
		}
	}
}
