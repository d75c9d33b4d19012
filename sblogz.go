// `sblogz` -- Analyze sbox trace logs
//
// Run `sblogz help` for brief help.

package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"sblogz/calls"
	. "sblogz/cmd"
	. "sblogz/common"
	"sblogz/daemon"
	"sblogz/export"
	"sblogz/paths"
	"sblogz/ptree"
	"sblogz/summary"
)

func main() {
	err := sblogz()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func sblogz() error {
	anyCmd, verb := commandLine()

	if anyCmd.CpuProfileFile() != "" {
		f, err := os.Create(anyCmd.CpuProfileFile())
		if err != nil {
			return fmt.Errorf("Failed to create profile\n%w", err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	switch cmd := anyCmd.(type) {
	case AnalysisCommand:
		return localAnalysis(cmd, os.Stdout)
	case PrimitiveCommand:
		return cmd.Perform(os.Stdin, os.Stdout, os.Stderr)
	default:
		panic(fmt.Sprintf("Unexpected command type for verb %s", verb))
	}
}

func commandLine() (Command, string) {
	out := CLIOutput()

	if len(os.Args) < 2 {
		fmt.Fprintf(out, "Required operation missing, try `sblogz help`\n")
		os.Exit(2)
	}

	var cmd Command
	var verb = os.Args[1]
	switch verb {
	case "help", "-h":
		fmt.Fprintf(out, "Usage: %s command [options] [-- logfile]\n", os.Args[0])
		fmt.Fprintf(out, "Commands:\n")
		fmt.Fprintf(out, "  summary - print a summary report for a traced session\n")
		fmt.Fprintf(out, "  paths   - print the aggregated path-mapping indexes\n")
		fmt.Fprintf(out, "  ptree   - write the process tree as a DOT diagram\n")
		fmt.Fprintf(out, "  calls   - write the program call graph as a DOT diagram\n")
		fmt.Fprintf(out, "  export  - export the aggregates to a PostgreSQL database\n")
		fmt.Fprintf(out, "  daemon  - serve the analysis verbs over HTTP\n")
		fmt.Fprintf(out, "  version - print information about the program\n")
		fmt.Fprintf(out, "  help    - print this message\n")
		fmt.Fprintf(out, "Each command accepts -h to further explain options.\n")
		os.Exit(0)
	case "summary":
		cmd = new(summary.SummaryCommand)
	case "paths":
		cmd = new(paths.PathsCommand)
	case "ptree", "tree":
		cmd = new(ptree.PtreeCommand)
		verb = "ptree"
	case "calls":
		cmd = new(calls.CallsCommand)
	case "export":
		cmd = new(export.ExportCommand)
	case "daemon":
		cmd = new(daemon.DaemonCommand)
	case "version":
		fmt.Printf("sblogz version(%s)\n", Version)
		os.Exit(0)
	default:
		fmt.Fprintf(out, "Unknown operation %s, try `sblogz help`\n", verb)
		os.Exit(2)
	}

	fs := NewCLI(verb, cmd, os.Args[0], true)
	cmd.Add(fs)

	// Everything after -- is a rest argument, currently only the logfile.
	args := os.Args[2:]
	var rest []string
	for i, arg := range args {
		if arg == "--" {
			rest = args[i+1:]
			args = args[:i]
			break
		}
	}
	fs.Parse(args)
	if len(rest) > 0 {
		if c, ok := cmd.(SetRestArgumentsAPI); ok {
			c.SetRestArguments(rest)
		} else {
			fmt.Fprintf(out, "Rest arguments not accepted by `%s`\n", verb)
			os.Exit(2)
		}
	}
	if err := cmd.Validate(); err != nil {
		fmt.Fprintf(out, "Bad arguments, try `sblogz %s -h`\n%v\n", verb, err)
		os.Exit(2)
	}
	return cmd, verb
}
