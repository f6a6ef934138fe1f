package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// List prints every available automaton with its alphabet and size.
func List(opts EngineOptions, out io.Writer) error {
	engine, err := createEngine(opts, NewLogger(opts.Debug))
	if err != nil {
		return err
	}

	ids, err := engine.List()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATES\tALPHABET\tNAME")
	for _, id := range ids {
		a, err := engine.Automaton(id)
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\tinvalid: %v\n", id, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", id, len(a.States()), strings.Join(a.Alphabet(), " "), a.Name())
	}
	return tw.Flush()
}
