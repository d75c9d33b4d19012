// Single-pass analysis driver: each log line flows once through the record
// parser and then into the tree builder or the path aggregator, in arrival
// order.  Accounting correlation runs strictly after end of stream, so no
// table is ever mutated concurrently.

package analyze

import (
	"bufio"
	"fmt"
	"io"

	"sblogz/acct"
	. "sblogz/common"
	"sblogz/pathmap"
	"sblogz/process"
	"sblogz/sboxlog"
)

// Lines in practice stay well under this, but a runaway argv in a start
// event should not kill the run.
const maxLine = 1024 * 1024

type Options struct {
	NoBlacklist bool
	Blacklist   []string
	Verbose     bool
}

type Analysis struct {
	Session *sboxlog.Session
	Tree    *process.Tree
	Paths   *pathmap.Store
	Totals  *acct.Totals // nil when no accounting source was correlated
}

// Run consumes the whole log stream and returns the completed tables.

func Run(input io.Reader, opts Options) (*Analysis, error) {
	a := &Analysis{
		Session: sboxlog.NewSession(),
		Tree:    process.NewTree(),
		Paths: pathmap.NewStore(pathmap.Config{
			NoBlacklist: opts.NoBlacklist,
			Blacklist:   opts.Blacklist,
		}),
	}

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		a.ingestLine(scanner.Text())
		if opts.Verbose && a.Session.Lines%100000 == 0 {
			Log.Infof("%d lines read", a.Session.Lines)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("Failed to read log records\n%w", err)
	}
	if opts.Verbose {
		Log.Infof("%d lines read, %d records accepted", a.Session.Lines, a.Session.Accepted)
	}
	return a, nil
}

func (a *Analysis) ingestLine(line string) {
	rec := sboxlog.ParseLine(line, a.Session)
	if rec == nil {
		return
	}
	ev := sboxlog.MatchEvent(rec.Message)
	if ev.Kind == sboxlog.EvNone {
		return
	}
	ident := sboxlog.ParseIdentity(rec.Process)
	switch ev.Kind {
	case sboxlog.EvStart:
		a.Tree.Start(ident, ev, rec.Timestamp)
	case sboxlog.EvExit:
		a.Tree.Exit(ev)
	case sboxlog.EvExecMarker:
		a.Tree.ExecMarker(ident, ev)
	default:
		a.Paths.Apply(a.Session, ident, ev)
	}
}

// CorrelateAccounting joins an accounting record source to the completed
// tree.  hz is the platform clock-tick divisor.

func (a *Analysis) CorrelateAccounting(input io.Reader, hz float64) error {
	totals, err := acct.Correlate(input, a.Tree, hz)
	if err != nil {
		return err
	}
	a.Totals = totals
	return nil
}
