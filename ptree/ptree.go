// `sblogz ptree` - the process-tree diagram, written as DOT.  Solid edges
// are genuine parentage, dashed edges are parents recovered through the
// orphan table.

package ptree

import (
	"errors"
	"io"

	"sblogz/analyze"
	. "sblogz/cmd"
	. "sblogz/common"
	"sblogz/diagram"
)

type PtreeCommand struct /* implements AnalysisCommand */ {
	DevArgs
	VerboseArgs
	SourceArgs
	FilterArgs

	Output string
}

var _ AnalysisCommand = (*PtreeCommand)(nil)

func (pc *PtreeCommand) Summary() []string {
	return []string{
		"Write the reconstructed process tree as a DOT diagram, with nodes",
		"colored by CPU load when an accounting source is given.",
	}
}

func (pc *PtreeCommand) Add(fs *CLI) {
	pc.DevArgs.Add(fs)
	pc.VerboseArgs.Add(fs)
	pc.SourceArgs.Add(fs)
	pc.FilterArgs.Add(fs)
	fs.Group("output")
	fs.StringVar(&pc.Output, "output", "", "Write the diagram to `filename` [default: stdout]")
}

func (pc *PtreeCommand) Validate() error {
	err := errors.Join(
		pc.DevArgs.Validate(),
		pc.VerboseArgs.Validate(),
		pc.SourceArgs.Validate(),
		pc.FilterArgs.Validate(),
	)
	ApplyDefault(&pc.Output, OutputTreeFile)
	return err
}

func (pc *PtreeCommand) SourceFlags() *SourceArgs {
	return &pc.SourceArgs
}

func (pc *PtreeCommand) FilterFlags() *FilterArgs {
	return &pc.FilterArgs
}

func (pc *PtreeCommand) Perform(out io.Writer, a *analyze.Analysis) error {
	g := diagram.ProcessTree(a.Tree, a.Totals)
	return g.WriteDotFile(pc.Output, out)
}
