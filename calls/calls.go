// `sblogz calls` - the program call-graph diagram, written as DOT.  One
// node per (execution policy, binary) pair, one edge per direct call
// relationship from the Executed sets.

package calls

import (
	"errors"
	"io"

	"sblogz/analyze"
	. "sblogz/cmd"
	. "sblogz/common"
	"sblogz/diagram"
)

type CallsCommand struct /* implements AnalysisCommand */ {
	DevArgs
	VerboseArgs
	SourceArgs
	FilterArgs

	Output string
}

var _ AnalysisCommand = (*CallsCommand)(nil)

func (cc *CallsCommand) Summary() []string {
	return []string{
		"Write the program call graph as a DOT diagram, with nodes colored",
		"by cumulative CPU load when an accounting source is given.",
	}
}

func (cc *CallsCommand) Add(fs *CLI) {
	cc.DevArgs.Add(fs)
	cc.VerboseArgs.Add(fs)
	cc.SourceArgs.Add(fs)
	cc.FilterArgs.Add(fs)
	fs.Group("output")
	fs.StringVar(&cc.Output, "output", "", "Write the diagram to `filename` [default: stdout]")
}

func (cc *CallsCommand) Validate() error {
	err := errors.Join(
		cc.DevArgs.Validate(),
		cc.VerboseArgs.Validate(),
		cc.SourceArgs.Validate(),
		cc.FilterArgs.Validate(),
	)
	ApplyDefault(&cc.Output, OutputCallsFile)
	return err
}

func (cc *CallsCommand) SourceFlags() *SourceArgs {
	return &cc.SourceArgs
}

func (cc *CallsCommand) FilterFlags() *FilterArgs {
	return &cc.FilterArgs
}

func (cc *CallsCommand) Perform(out io.Writer, a *analyze.Analysis) error {
	g := diagram.CallGraph(a.Tree, a.Totals)
	return g.WriteDotFile(cc.Output, out)
}
