package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch file",
		Short: "Solve a problem file again every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" {
				return errors.New("watch needs a file, not standard input")
			}
			w, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer w.Close()
			return a.watch(cmd.Context(), w, args[0], cmd.OutOrStdout())
		},
	}
}

// watch solves path once, then again after every write to it, until ctx is
// done. It watches the directory rather than the file so that editors that
// replace the file by renaming are followed. Parse errors are logged and do
// not stop the loop.
func (a *app) watch(ctx context.Context, w *fsnotify.Watcher, path string, out io.Writer) error {
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	solve := func() error {
		problem, err := a.readProblem(nil, path)
		if err != nil {
			a.logger.Print(err)
			return nil
		}
		outs, err := a.solveAll(ctx, []input{{path, problem}})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Fprintf(out, "== %s\n", time.Now().Format(time.RFC3339))
		return writeText(out, outs)
	}
	if err := solve(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := solve(); err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}
