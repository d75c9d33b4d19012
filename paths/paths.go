// `sblogz paths` - list the aggregated path indexes, with flags selecting
// categories and -full expanding the reference/function/process sets under
// each path.

package paths

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"sblogz/analyze"
	. "sblogz/cmd"
	"sblogz/pathmap"
)

type PathsCommand struct /* implements AnalysisCommand */ {
	DevArgs
	VerboseArgs
	SourceArgs
	FilterArgs

	Mapped   bool
	Reverse  bool
	Passed   bool
	Disabled bool
	Full     bool
}

var _ AnalysisCommand = (*PathsCommand)(nil)

func (pc *PathsCommand) Summary() []string {
	return []string{
		"Print the aggregated path-mapping indexes.  With no category flag,",
		"all four categories are printed.",
	}
}

func (pc *PathsCommand) Add(fs *CLI) {
	pc.DevArgs.Add(fs)
	pc.VerboseArgs.Add(fs)
	pc.SourceArgs.Add(fs)
	pc.FilterArgs.Add(fs)
	fs.Group("printing")
	fs.BoolVar(&pc.Mapped, "mapped", false, "Print mapped paths by source")
	fs.BoolVar(&pc.Reverse, "reverse", false, "Print mapped paths by destination")
	fs.BoolVar(&pc.Passed, "passed", false, "Print passed (unmapped) paths")
	fs.BoolVar(&pc.Disabled, "disabled", false, "Print disabled-passed paths")
	fs.BoolVar(&pc.Full, "full", false,
		"Expand the reference, function, and process sets under each path")
}

func (pc *PathsCommand) Validate() error {
	err := errors.Join(
		pc.DevArgs.Validate(),
		pc.VerboseArgs.Validate(),
		pc.SourceArgs.Validate(),
		pc.FilterArgs.Validate(),
	)
	if !pc.Mapped && !pc.Reverse && !pc.Passed && !pc.Disabled {
		pc.Mapped, pc.Reverse, pc.Passed, pc.Disabled = true, true, true, true
	}
	return err
}

func (pc *PathsCommand) SourceFlags() *SourceArgs {
	return &pc.SourceArgs
}

func (pc *PathsCommand) FilterFlags() *FilterArgs {
	return &pc.FilterArgs
}

func (pc *PathsCommand) Perform(out io.Writer, a *analyze.Analysis) error {
	if pc.Mapped {
		pc.printIndex(out, "Mapped paths (by source)", a.Paths.BySource, "->")
	}
	if pc.Reverse {
		pc.printIndex(out, "Mapped paths (by destination)", a.Paths.ByDest, "<-")
	}
	if pc.Passed {
		pc.printIndex(out, "Passed paths", a.Paths.Passed, "")
	}
	if pc.Disabled {
		pc.printIndex(out, "Disabled-passed paths", a.Paths.Disabled, "")
	}
	return nil
}

func (pc *PathsCommand) printIndex(out io.Writer, title string, ix pathmap.Index, arrow string) {
	fmt.Fprintf(out, "%s: %d\n", title, len(ix))
	for _, path := range ix.SortedPaths() {
		e := ix[path]
		fmt.Fprintf(out, "  %s [%d]\n", path, e.Count)
		if arrow != "" {
			for _, r := range sorted(e.References) {
				fmt.Fprintf(out, "    %s %s\n", arrow, r)
			}
		}
		if pc.Full {
			fmt.Fprintf(out, "    functions: %s\n", join(e.Functions))
			fmt.Fprintf(out, "    processes: %s\n", join(e.Processes))
		}
	}
}

func sorted(set map[string]bool) []string {
	xs := make([]string, 0, len(set))
	for x := range set {
		xs = append(xs, x)
	}
	sort.Strings(xs)
	return xs
}

func join(set map[string]bool) string {
	s := ""
	for i, x := range sorted(set) {
		if i > 0 {
			s += ", "
		}
		s += x
	}
	return s
}
