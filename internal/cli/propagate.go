package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cespare/lia"
	"github.com/cespare/lia/interval"
	"github.com/cespare/lia/strategy"
)

func newPropagateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "propagate [file]",
		Short: "Print the intervals found by propagation alone",
		Long: `propagate runs interval propagation on a problem until it narrows nothing
more (or --max-rounds passes have run) and prints the interval of every term,
without searching. A contradiction found on the way is reported as UNSAT.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			problem, err := a.readProblem(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			st := strategy.Run(lia.Saturate(problem, a.cfg.MaxRounds), lia.NewState())
			switch st.Kind() {
			case strategy.Contradicted:
				_, err := fmt.Fprintf(w, "UNSAT: %s\n", st.Message())
				return err
			case strategy.Aborted:
				_, err := fmt.Fprintf(w, "UNKNOWN: %s\n", st.Message())
				return err
			}
			state := lia.NewState()
			if env, ok := st.Env(); ok {
				state = env
			}
			state.Each(func(t lia.Term, i interval.Interval) {
				if err == nil {
					_, err = fmt.Fprintf(w, "%s ∈ %s\n", t, i)
				}
			})
			return err
		},
	}
}
