package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/explore-sim/explore-sim/explore"
	"github.com/explore-sim/explore-sim/explore/history"
)

var (
	historyDir       string // Exploration directory to inspect
	historyObjective string // Objective for the best-trial report
)

// historyCmd prints a read-only tabular view of a persisted history store
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the history store of a finished or running exploration",
	Run: func(cmd *cobra.Command, args []string) {
		view, err := history.Inspect(historyDir)
		if err != nil {
			logrus.Fatalf("Could not open history at %s: %v", historyDir, err)
		}

		printTable(view)

		best, err := view.BestTrial(historyObjective)
		if err != nil {
			logrus.Warnf("%v", err)
			return
		}
		fmt.Printf("\nbest trial: index=%d values=%v objectives=%v\n",
			best.Index, best.Values, best.Objectives)
	},
}

// printTable writes one row per trial with the standard diagnostic columns.
func printTable(view *history.View) {
	desc := view.Descriptor()

	var paramNames []string
	for _, p := range desc.VaryingParameters {
		paramNames = append(paramNames, p.Name)
	}
	var objNames []string
	for _, o := range desc.Objectives {
		objNames = append(objNames, o.Name)
	}
	sort.Strings(paramNames)
	sort.Strings(objNames)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	header := append([]string{"trial_index", "task", "status", "sim_worker", "sim_ended"}, paramNames...)
	header = append(header, objNames...)
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, t := range view.Trials() {
		row := []string{
			fmt.Sprintf("%d", t.Index),
			t.Task,
			string(t.Status),
			fmt.Sprintf("%d", t.Worker),
			fmt.Sprintf("%v", t.Status == explore.StatusCompleted || t.Status == explore.StatusFailed),
		}
		for _, name := range paramNames {
			row = append(row, fmt.Sprintf("%.6g", t.Values[name]))
		}
		for _, name := range objNames {
			if v, ok := t.Objectives[name]; ok {
				row = append(row, fmt.Sprintf("%.6g", v))
			} else {
				row = append(row, "-")
			}
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// init sets up CLI flags and attaches `history` to `root`
func init() {
	historyCmd.Flags().StringVar(&historyDir, "dir", "./exploration", "Exploration directory to inspect")
	historyCmd.Flags().StringVar(&historyObjective, "objective", "", "Objective for the best-trial report (default: first declared)")

	rootCmd.AddCommand(historyCmd)
}
