package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

var nextCmd = &cobra.Command{
	Use:     "next ID[,ID,...]",
	Aliases: []string{"advance"},
	Short:   "Advance tasks to the next state",
	Long: `Moves each task one step along the configured state sequence. A task already
in the final state fails the whole batch and nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runNext,
}

var completeCmd = &cobra.Command{
	Use:     "complete ID[,ID,...]",
	Aliases: []string{"done"},
	Short:   "Set tasks to the final state",
	Args:    cobra.ExactArgs(1),
	RunE:    runComplete,
}

func init() {
	for _, c := range []*cobra.Command{nextCmd, completeCmd} {
		c.Flags().Bool("cascade", false, "give every descendant the same new state")
		c.Flags().String("if-unmodified-since", "", "fail if the data file changed after this RFC 3339 time")
		rootCmd.AddCommand(c)
	}
}

func runNext(cmd *cobra.Command, args []string) error {
	return runTransition(cmd, args[0], (*tasklist.Manager).AdvanceState)
}

func runComplete(cmd *cobra.Command, args []string) error {
	return runTransition(cmd, args[0], (*tasklist.Manager).CompleteState)
}

func runTransition(cmd *cobra.Command, arg string,
	op func(*tasklist.Manager, []int, bool) ([]tasklist.Transition, error),
) error {
	ids, err := parseIDs(arg)
	if err != nil {
		return err
	}
	cascade, _ := cmd.Flags().GetBool("cascade")

	m, err := openManager()
	if err != nil {
		return err
	}
	if m, err = withPrecondition(cmd, m); err != nil {
		return err
	}

	transitions, err := op(m, ids, cascade)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return writeResult(w, transitions, func() {
		for _, tr := range transitions {
			from := tr.From
			if from == "" {
				from = "(none)"
			}
			output.Messagef(w, "Task #%d: %s → %s", tr.ID, from, tr.To)
		}
	})
}
