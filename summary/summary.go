// `sblogz summary` - the default textual report: process and program
// counts, session variables, timeframe, per-category path counts, and the
// ambiguity notices.

package summary

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"sblogz/analyze"
	. "sblogz/cmd"
	"sblogz/pathmap"
	"sblogz/process"
)

type SummaryCommand struct /* implements AnalysisCommand */ {
	DevArgs
	VerboseArgs
	SourceArgs
	FilterArgs

	Full bool
}

var _ AnalysisCommand = (*SummaryCommand)(nil)

func (sc *SummaryCommand) Summary() []string {
	return []string{
		"Print a summary of a traced session: processes, programs, path",
		"mapping counts, and ambiguous (multiply-mapped) paths.",
	}
}

func (sc *SummaryCommand) Add(fs *CLI) {
	sc.DevArgs.Add(fs)
	sc.VerboseArgs.Add(fs)
	sc.SourceArgs.Add(fs)
	sc.FilterArgs.Add(fs)
	fs.Group("printing")
	fs.BoolVar(&sc.Full, "full", false,
		"Also print the collected error/warning/notice messages")
}

func (sc *SummaryCommand) Validate() error {
	return errors.Join(
		sc.DevArgs.Validate(),
		sc.VerboseArgs.Validate(),
		sc.SourceArgs.Validate(),
		sc.FilterArgs.Validate(),
	)
}

func (sc *SummaryCommand) SourceFlags() *SourceArgs {
	return &sc.SourceArgs
}

func (sc *SummaryCommand) FilterFlags() *FilterArgs {
	return &sc.FilterArgs
}

func (sc *SummaryCommand) Perform(out io.Writer, a *analyze.Analysis) error {
	s := a.Session
	tree := a.Tree

	fmt.Fprintf(out, "Lines: %d read, %d accepted\n", s.Lines, s.Accepted)
	if s.FirstTimestamp != "" {
		fmt.Fprintf(out, "Timeframe: %s .. %s\n", s.FirstTimestamp, s.LastTimestamp)
	}
	if s.TargetRoot != "" {
		fmt.Fprintf(out, "Target root: %s\n", s.TargetRoot)
	}
	if s.ToolsRoot != "" {
		fmt.Fprintf(out, "Tools root: %s\n", s.ToolsRoot)
	}
	if s.MapMode != "" {
		fmt.Fprintf(out, "Mapping mode: %s\n", s.MapMode)
	}

	fmt.Fprintf(out, "Processes: %d (%d names), %d without exit status\n",
		len(tree.Nodes), len(tree.Instances), tree.Unterminated())
	if tree.First != process.NoNode {
		first := tree.Nodes[tree.First]
		fmt.Fprintf(out, "First process: %s[%d]\n", first.Name, first.Pid)
	}
	fmt.Fprintf(out, "Programs: %d\n", len(tree.Programs))
	if a.Totals != nil {
		fmt.Fprintf(out, "Accounting: %d records, %d correlated, max elapsed %.2fs, user %.2fs, sys %.2fs\n",
			a.Totals.Records, a.Totals.Correlated,
			a.Totals.MaxElapsed, a.Totals.UserSum, a.Totals.SysSum)
	}

	fmt.Fprintf(out, "Paths: %d mapped sources, %d mapped destinations, %d passed, %d disabled\n",
		len(a.Paths.BySource), len(a.Paths.ByDest), len(a.Paths.Passed), len(a.Paths.Disabled))

	fmt.Fprintf(out, "Log messages: %d errors, %d warnings, %d notices\n",
		len(s.Errors), len(s.Warnings), len(s.Notices))
	if sc.Full {
		printMessages(out, "Errors", s.Errors)
		printMessages(out, "Warnings", s.Warnings)
		printMessages(out, "Notices", s.Notices)
	}

	printAmbiguities(out, "Multiple mappings by source", a.Paths.BySource)
	printAmbiguities(out, "Multiple mappings by destination", a.Paths.ByDest)
	return nil
}

func printMessages(out io.Writer, title string, msgs []string) {
	if len(msgs) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", title)
	for _, m := range msgs {
		fmt.Fprintf(out, "  %s\n", m)
	}
}

func printAmbiguities(out io.Writer, title string, ix pathmap.Index) {
	paths := ix.Ambiguous()
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", title)
	for _, p := range paths {
		refs := make([]string, 0, len(ix[p].References))
		for r := range ix[p].References {
			refs = append(refs, r)
		}
		sort.Strings(refs)
		fmt.Fprintf(out, "  %s -> %d paths:\n", p, len(refs))
		for _, r := range refs {
			fmt.Fprintf(out, "    %s\n", r)
		}
	}
}
