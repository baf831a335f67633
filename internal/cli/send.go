package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patham9/YAN/internal/client"
	"github.com/patham9/YAN/internal/engine"
)

var (
	sendURL        string
	sendType       string
	sendEternal    bool
	sendFrequency  float64
	sendConfidence float64
	sendWait       int64
)

var sendCmd = &cobra.Command{
	Use:   "send <term>",
	Short: "Input a statement into a running server",
	Long:  `The term is an atom symbol or a JSON compound such as '["-->","bird","animal"]'.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSend,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the memory summary of a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := client.New(sendURL).Summary()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{sendCmd, summaryCmd} {
		c.Flags().StringVar(&sendURL, "url", "", "server URL (env YAN_URL)")
	}
	sendCmd.Flags().StringVar(&sendType, "type", "belief", "belief or goal")
	sendCmd.Flags().BoolVar(&sendEternal, "eternal", false, "input an eternal belief")
	sendCmd.Flags().Float64VarP(&sendFrequency, "frequency", "f", engine.DefaultFrequency, "truth frequency")
	sendCmd.Flags().Float64VarP(&sendConfidence, "confidence", "c", engine.DefaultConfidence, "truth confidence")
	sendCmd.Flags().Int64Var(&sendWait, "wait", 0, "steps to advance the server clock afterwards")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(summaryCmd)
}

// parseTermArg accepts a JSON term or a bare atom symbol.
func parseTermArg(arg string) any {
	var node any
	if err := json.Unmarshal([]byte(arg), &node); err == nil {
		return node
	}
	return arg
}

func runSend(cmd *cobra.Command, args []string) error {
	c := client.New(sendURL)
	f, conf := sendFrequency, sendConfidence
	ev, err := c.AddEvent(engine.Input{
		Term:       parseTermArg(args[0]),
		Type:       sendType,
		Frequency:  &f,
		Confidence: &conf,
		Eternal:    sendEternal,
	})
	if err != nil {
		return err
	}

	at := "eternal"
	if ev.OccurrenceTime != nil {
		at = fmt.Sprintf("t=%d", *ev.OccurrenceTime)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s %%%.2f;%.2f%% %s stamp %s\n", ev.Term, ev.Punctuation, ev.Frequency, ev.Confidence, at, ev.Stamp)

	if sendWait > 0 {
		now, err := c.Advance(sendWait)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "time %d\n", now)
	}
	return nil
}
