// Pattern-matching dispatch over free-form record messages.
//
// The runtime writes a small number of event messages into the log among a
// much larger volume of informational text.  The matchers are tried in
// order, first match wins, and a message matching nothing is an EvNone -
// still a record, just not an event.

package sboxlog

import (
	"regexp"
	"strconv"
)

type EventKind int

const (
	EvNone EventKind = iota
	EvStart
	EvExit
	EvExecMarker
	EvMapped
	EvPassed
	EvDisabledPassed
)

type Event struct {
	Kind EventKind

	// EvStart
	Version string
	Build   string
	Ppid    int
	Binary  string
	Policy  string

	// EvExit: Status is the numeric code or the signal description, verbatim
	Pid    int
	Status string

	// EvExecMarker
	ChildPid int

	// EvMapped, EvPassed, EvDisabledPassed; Dest is set for EvMapped only
	Function string
	Path     string
	Dest     string
}

type matcher struct {
	re     *regexp.Regexp
	decode func(m []string) Event
}

// MT: Constant after initialization; immutable
var matchers = []matcher{
	{
		regexp.MustCompile(`^process started, version=(\S+) \((.*)\) ppid=(\d+) binary='(.*)' policy='(.*)'$`),
		func(m []string) Event {
			return Event{
				Kind:    EvStart,
				Version: m[1],
				Build:   m[2],
				Ppid:    atoi(m[3]),
				Binary:  m[4],
				Policy:  m[5],
			}
		},
	},
	{
		regexp.MustCompile(`^process (\d+) exited with status (\d+)$`),
		func(m []string) Event {
			return Event{Kind: EvExit, Pid: atoi(m[1]), Status: m[2]}
		},
	},
	{
		regexp.MustCompile(`^process (\d+) was terminated by (.+)$`),
		func(m []string) Event {
			return Event{Kind: EvExit, Pid: atoi(m[1]), Status: m[2]}
		},
	},
	{
		regexp.MustCompile(`^preparing to exec, child pid=(\d+)$`),
		func(m []string) Event {
			return Event{Kind: EvExecMarker, ChildPid: atoi(m[1])}
		},
	},
	{
		regexp.MustCompile(`^mapped: (\S+) '(.*)' -> '(.*)'$`),
		func(m []string) Event {
			return Event{Kind: EvMapped, Function: m[1], Path: m[2], Dest: m[3]}
		},
	},
	{
		regexp.MustCompile(`^pass: (\S+) '(.*)'$`),
		func(m []string) Event {
			return Event{Kind: EvPassed, Function: m[1], Path: m[2]}
		},
	},
	{
		regexp.MustCompile(`^disabled\(pass\): (\S+) '(.*)'$`),
		func(m []string) Event {
			return Event{Kind: EvDisabledPassed, Function: m[1], Path: m[2]}
		},
	},
}

// MatchEvent decodes the event carried by a record message, if any.

func MatchEvent(msg string) Event {
	for _, ma := range matchers {
		if m := ma.re.FindStringSubmatch(msg); m != nil {
			return ma.decode(m)
		}
	}
	return Event{Kind: EvNone}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
