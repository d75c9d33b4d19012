// Driver for the local analysis commands.

package main

import (
	"fmt"
	"io"
	"os"

	"sblogz/analyze"
	. "sblogz/cmd"
	. "sblogz/common"
)

func localAnalysis(cmd AnalysisCommand, stdout io.Writer) error {
	if cmd.VerboseFlag() {
		Log.LowerLevelTo(LogLevelInfo)
	}

	src := cmd.SourceFlags()
	input, closer, err := src.OpenLog()
	if err != nil {
		return err
	}
	defer closer()

	filter := cmd.FilterFlags()
	a, err := analyze.Run(input, analyze.Options{
		NoBlacklist: filter.NoBlacklist,
		Blacklist:   filter.Functions(),
		Verbose:     cmd.VerboseFlag(),
	})
	if err != nil {
		return err
	}

	// Accounting is strictly additive: a missing or malformed source skips
	// the phase and degrades timing detail, it never fails the run.
	if src.AcctFile != "" {
		acctIn, err := os.Open(src.AcctFile)
		if err != nil {
			Log.Errorf("Failed to open accounting source %s: %v, skipping", src.AcctFile, err)
		} else {
			err = a.CorrelateAccounting(acctIn, src.Hz)
			acctIn.Close()
			if err != nil {
				Log.Errorf("Accounting correlation aborted: %v", err)
			}
		}
	}

	if err := cmd.Perform(stdout, a); err != nil {
		return fmt.Errorf("Failed to perform operation\n%w", err)
	}
	return nil
}
