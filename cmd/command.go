package cmd

import (
	"io"

	"sblogz/analyze"
)

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Interfaces the various commands can implement to respond to various situations.

type SetRestArgumentsAPI interface {
	// Install any left-over arguments into the arguments object
	SetRestArguments(args []string)
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Any command of any type must be able to define and validate command line
// args, and handle some developer arguments.

type Command interface {
	// Return the name of the cpu profile file, if requested
	CpuProfileFile() string

	// Documentation, one line per string
	Summary() []string

	// Add all arguments including shared arguments
	Add(fs *CLI)

	// Validate all arguments including shared arguments
	Validate() error

	// The -v flag
	VerboseFlag() bool
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// An analysis command runs over the completed tables of one ingested trace
// log: summary, ptree, calls, paths, export.

type AnalysisCommand interface {
	Command
	SetRestArgumentsAPI

	// Retrieve shared source/aggregation arguments
	SourceFlags() *SourceArgs
	FilterFlags() *FilterArgs

	// Perform the operation over the final, immutable aggregates
	Perform(out io.Writer, a *analyze.Analysis) error
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// A primitive command handles its own logic completely: daemon.

type PrimitiveCommand interface {
	Command

	Perform(in io.Reader, stdout, stderr io.Writer) error
}
