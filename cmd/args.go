package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	. "sblogz/common"
)

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// DevArgs are for development and their inclusion can be controlled with the
// devArgs setting, below.

type DevArgs struct {
	CpuProfile string
}

const devArgs = true

func (d *DevArgs) CpuProfileFile() string {
	return d.CpuProfile
}

func (d *DevArgs) Add(fs *CLI) {
	if devArgs {
		fs.Group("development")
		fs.StringVar(&d.CpuProfile, "cpuprofile", "",
			"(Development) write cpu profile to `filename`")
	}
}

func (d *DevArgs) Validate() error {
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// You wouldn't think -v would be so complicated.

type VerboseArgs struct {
	Verbose bool
}

func (va *VerboseArgs) Add(fs *CLI) {
	fs.Group("development")
	fs.BoolVar(&va.Verbose, "v", false, "Print verbose diagnostics to stderr")
	fs.BoolVar(&va.Verbose, "verbose", false, "Print verbose diagnostics to stderr")
}

func (va *VerboseArgs) Validate() error {
	return nil
}

func (va *VerboseArgs) VerboseFlag() bool {
	return va.Verbose
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// SourceArgs name the trace log and the optional accounting source.  The log
// can be given as -log-file, as a rest argument after --, or defaulted from
// ~/.sblogz; "" or "-" means stdin.  A missing log aborts the run, a missing
// accounting source merely degrades timing detail.

type SourceArgs struct {
	LogFile  string
	AcctFile string
	Hz       float64

	restArgs []string
}

func (sa *SourceArgs) Add(fs *CLI) {
	fs.Group("data-source")
	fs.StringVar(&sa.LogFile, "log-file", "",
		"Trace log `filename` [default: stdin]")
	fs.StringVar(&sa.AcctFile, "acct-file", "",
		"Process accounting `filename` (optional, adds CPU/elapsed time)")
	fs.Float64Var(&sa.Hz, "hz", 100,
		"Clock `ticks` per second used by the accounting records")
}

func (sa *SourceArgs) SetRestArguments(args []string) {
	sa.restArgs = args
}

func (sa *SourceArgs) Validate() error {
	if len(sa.restArgs) > 1 {
		return errors.New("At most one logfile rest argument is allowed")
	}
	if len(sa.restArgs) == 1 {
		if sa.LogFile != "" {
			return errors.New("Both -log-file and a logfile rest argument given")
		}
		sa.LogFile = sa.restArgs[0]
	}
	ApplyDefault(&sa.LogFile, DataSourceLogFile)
	ApplyDefault(&sa.AcctFile, DataSourceAcct)
	if sa.LogFile != "" && sa.LogFile != "-" {
		sa.LogFile = path.Clean(sa.LogFile)
	}
	if sa.Hz <= 0 {
		return fmt.Errorf("Bad -hz value %v", sa.Hz)
	}
	return nil
}

// OpenLog opens the primary log stream.  The returned closer is a no-op for
// stdin.

func (sa *SourceArgs) OpenLog() (io.Reader, func(), error) {
	if sa.LogFile == "" || sa.LogFile == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(sa.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to open log %s\n%w", sa.LogFile, err)
	}
	return f, func() { f.Close() }, nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// FilterArgs configure the path-aggregation function blacklist.

type FilterArgs struct {
	NoBlacklist bool
	Blacklist   string
}

func (fa *FilterArgs) Add(fs *CLI) {
	fs.Group("aggregation")
	fs.BoolVar(&fa.NoBlacklist, "no-blacklist", false,
		"Aggregate mapping events for all functions, including the stat family")
	fs.StringVar(&fa.Blacklist, "blacklist", "",
		"Also ignore mapping events from these `functions` (comma-separated)")
}

func (fa *FilterArgs) Validate() error {
	return nil
}

func (fa *FilterArgs) Functions() []string {
	if fa.Blacklist == "" {
		return nil
	}
	return strings.Split(fa.Blacklist, ",")
}
