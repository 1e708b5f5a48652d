package cli

import (
	"crypto/rand"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/cespare/lia"
)

// An outcome is one solved problem.
type outcome struct {
	name  string // input file, or "-" for stdin
	res   lia.Result
	trace []byte
}

// report is the YAML form of an outcome. All reports written by one
// invocation share a run ID.
type report struct {
	RunID  string         `yaml:"run_id"`
	File   string         `yaml:"file"`
	Answer string         `yaml:"answer"`
	Model  map[string]int `yaml:"model,omitempty"`
	Stats  lia.Stats      `yaml:"stats"`
	Reason string         `yaml:"reason,omitempty"`
}

func newRunID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

func writeYAML(w io.Writer, runID string, outs []outcome) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, o := range outs {
		r := report{
			RunID:  runID,
			File:   o.name,
			Answer: o.res.Answer.String(),
			Model:  o.res.Model,
			Stats:  o.res.Stats,
		}
		if o.res.Reason != nil {
			r.Reason = o.res.Reason.Error()
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return enc.Close()
}

// writeText writes the answer, then one "name = value" line per variable of
// a model. With more than one outcome each is headed by "== name".
func writeText(w io.Writer, outs []outcome) error {
	for _, o := range outs {
		if len(outs) > 1 {
			if _, err := fmt.Fprintf(w, "== %s\n", o.name); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, o.res.Answer); err != nil {
			return err
		}
		names := make([]string, 0, len(o.res.Model))
		for name := range o.res.Model {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, err := fmt.Fprintf(w, "%s = %d\n", name, o.res.Model[name]); err != nil {
				return err
			}
		}
	}
	return nil
}
