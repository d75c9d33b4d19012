// Core types for sbox trace log data.

package sboxlog

// The log is newline-delimited text.  Comment lines start with '#' and carry
// session-scoped variables; data lines are tab-separated with at least three
// fields:
//
//   timestamp[ (LEVEL)] <TAB> name[pid[/tid]] <TAB> message [<TAB> srcloc]
//
// A Record is one accepted data line, immutable once parsed.  Lines with
// fewer than three fields are dropped silently, there is no error path out
// of the parser.

type Level int

const (
	LevelNone Level = iota
	LevelError
	LevelWarning
	LevelNotice
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelNotice:
		return "NOTICE"
	default:
		return ""
	}
}

type Record struct {
	Timestamp string
	Level     Level
	Process   string // raw process token, see Identity
	Message   string
	SrcLoc    string // "" if the line had only three fields
}

// Identity is the decoded form of a process token.  Two shapes are
// recognized, `name[pid]` and `name[pid/tid]`; anything else leaves Pid
// at NoPid.  The name is not normalized - nested shells produce names
// that themselves contain brackets, so matching anchors at the end of
// the token.

const NoPid = -1

type Identity struct {
	Name string
	Pid  int
	Tid  int
}

// Session holds state that is scoped to one traced session: the root
// substitution variables announced in comment lines, the per-level message
// collections, and the observed timeframe.  It has no expiry; it is valid
// until end of stream.

type Session struct {
	TargetRoot string
	ToolsRoot  string
	MapMode    string

	Errors   []string
	Warnings []string
	Notices  []string

	FirstTimestamp string
	LastTimestamp  string

	Lines    int // lines seen
	Accepted int // records produced
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) collect(r *Record) {
	switch r.Level {
	case LevelError:
		s.Errors = append(s.Errors, r.Message)
	case LevelWarning:
		s.Warnings = append(s.Warnings, r.Message)
	case LevelNotice:
		s.Notices = append(s.Notices, r.Message)
	}
	if s.FirstTimestamp == "" {
		s.FirstTimestamp = r.Timestamp
	}
	s.LastTimestamp = r.Timestamp
}
