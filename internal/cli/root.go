// Package cli implements the lia command.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cespare/lia"
)

// NewRoot returns the lia command, reading files from the OS.
func NewRoot() *cobra.Command {
	return newRoot(afero.NewOsFs())
}

type app struct {
	fs         afero.Fs
	configPath string
	cfg        Config
	logger     *log.Logger
}

func newRoot(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}
	cmd := &cobra.Command{
		Use:   "lia [flags] [file...]",
		Short: "Decide linear integer equalities",
		Long: `lia decides whether a conjunction of linear integer equalities is
satisfiable. Each input holds one problem, one equality per line:

  x + y + 3 = z - 1

For each problem lia prints SAT followed by a satisfying assignment, UNSAT,
or UNKNOWN if the search gave up. If no files are given, lia reads a single
problem from standard input.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd)
		},
		RunE: a.runSolve,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file (default $"+configEnv+")")
	pf.Int("max-depth", 0, "abandon search branches nested deeper than this (0 means no limit)")
	pf.Int("max-rounds", 0, "limit on propagation passes when saturating (0 means no limit)")
	pf.Bool("saturate", false, "propagate to a fixpoint before searching")
	pf.String("order", "", "variable order: name or occurrence")
	pf.Bool("trace", false, "log search steps to stderr")
	pf.Bool("verbose", false, "with --trace, dump the propagation state at each step")
	cmd.Flags().String("format", "", "output format: text or yaml")
	cmd.Flags().Int("jobs", 0, "number of problems solved concurrently")

	cmd.AddCommand(newPropagateCmd(a))
	cmd.AddCommand(newWatchCmd(a))
	return cmd
}

// configure loads the config file and applies explicitly set flags over it.
func (a *app) configure(cmd *cobra.Command) error {
	a.logger = log.New(cmd.ErrOrStderr(), "", 0)
	path := a.configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	cfg, err := loadConfig(a.fs, path)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	var ferr error
	set := func(name string, f func()) {
		if flags.Changed(name) {
			f()
		}
	}
	set("max-depth", func() { cfg.MaxDepth, ferr = flags.GetInt("max-depth") })
	set("max-rounds", func() { cfg.MaxRounds, ferr = flags.GetInt("max-rounds") })
	set("saturate", func() { cfg.Saturate, ferr = flags.GetBool("saturate") })
	set("order", func() {
		var s string
		s, ferr = flags.GetString("order")
		cfg.Order = lia.Order(s)
	})
	set("trace", func() { cfg.Trace, ferr = flags.GetBool("trace") })
	set("verbose", func() { cfg.Verbose, ferr = flags.GetBool("verbose") })
	set("format", func() { cfg.Format, ferr = flags.GetString("format") })
	set("jobs", func() { cfg.Jobs, ferr = flags.GetInt("jobs") })
	if ferr != nil {
		return ferr
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// input is a named problem source.
type input struct {
	name    string
	problem []lia.Atom
}

// readInputs parses every named file, or standard input if there are none.
func (a *app) readInputs(cmd *cobra.Command, args []string) ([]input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs := make([]input, 0, len(args))
	for _, name := range args {
		problem, err := a.readProblem(cmd.InOrStdin(), name)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input{name, problem})
	}
	return inputs, nil
}

func (a *app) readProblem(stdin io.Reader, name string) ([]lia.Atom, error) {
	r := stdin
	if name != "-" {
		f, err := a.fs.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	problem, err := lia.ParseProblem(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return problem, nil
}

// solveOptions returns the solver options for one problem. Trace output for
// the problem goes to trace.
func (a *app) solveOptions(trace io.Writer) []lia.Option {
	opts := []lia.Option{lia.WithOptions(a.cfg.Options)}
	if a.cfg.Trace {
		opts = append(opts, lia.WithTracer(lia.LoggingTracer{Writer: trace, Verbose: a.cfg.Verbose}))
	}
	return opts
}

// solveAll solves the inputs with at most cfg.Jobs running at once. The
// outcomes are in input order.
func (a *app) solveAll(ctx context.Context, inputs []input) ([]outcome, error) {
	outs := make([]outcome, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Jobs)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var trace bytes.Buffer
			res := lia.Solve(in.problem, a.solveOptions(&trace)...)
			outs[i] = outcome{name: in.name, res: res, trace: trace.Bytes()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}

func (a *app) runSolve(cmd *cobra.Command, args []string) error {
	inputs, err := a.readInputs(cmd, args)
	if err != nil {
		return err
	}
	outs, err := a.solveAll(cmd.Context(), inputs)
	if err != nil {
		return err
	}
	return a.write(cmd, outs)
}

func (a *app) write(cmd *cobra.Command, outs []outcome) error {
	for _, o := range outs {
		if len(o.trace) > 0 {
			if _, err := cmd.ErrOrStderr().Write(o.trace); err != nil {
				return err
			}
		}
		if o.res.Answer == lia.Unknown {
			a.logger.Printf("%s: %s", o.name, o.res.Reason)
		}
	}
	if a.cfg.Format == "yaml" {
		return writeYAML(cmd.OutOrStdout(), newRunID(time.Now()), outs)
	}
	return writeText(cmd.OutOrStdout(), outs)
}
