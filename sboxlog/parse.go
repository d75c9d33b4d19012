// Tolerant single-pass parser for sbox trace log lines.
//
// This is not a grammar check: anything that does not look like a record is
// dropped and we move on.  The only side effects are on the Session - root
// variables from comment lines, the per-level collections, and the line
// counters.

package sboxlog

import (
	"strings"
)

const (
	targetRootVar = "#SBOX_TARGET_ROOT="
	toolsRootVar  = "#SBOX_TOOLS_ROOT="
	mapModeVar    = "#SBOX_MAPMODE="
)

// ParseLine parses one line (trailing newline already stripped) against the
// session.  It returns nil for comment lines and malformed lines.

func ParseLine(line string, s *Session) *Record {
	s.Lines++

	if strings.HasPrefix(line, "#") {
		switch {
		case strings.HasPrefix(line, targetRootVar):
			s.TargetRoot = line[len(targetRootVar):]
		case strings.HasPrefix(line, toolsRootVar):
			s.ToolsRoot = line[len(toolsRootVar):]
		case strings.HasPrefix(line, mapModeVar):
			s.MapMode = line[len(mapModeVar):]
		}
		return nil
	}

	// Split strictly on tab.  Fields beyond the fourth are folded into the
	// fourth; fewer than three fields is a malformed line.
	fields := strings.SplitN(line, "\t", 4)
	if len(fields) < 3 {
		return nil
	}

	r := &Record{
		Process: fields[1],
		Message: fields[2],
	}
	if len(fields) >= 4 {
		r.SrcLoc = fields[3]
	}
	r.Timestamp, r.Level = splitLevel(fields[0])

	s.Accepted++
	s.collect(r)
	return r
}

// splitLevel splits "timestamp (LEVEL)" into its parts.  An absent or
// unrecognized suffix leaves the level unset and the timestamp whole.

func splitLevel(field string) (string, Level) {
	i := strings.LastIndex(field, " (")
	if i < 0 || !strings.HasSuffix(field, ")") {
		return field, LevelNone
	}
	switch field[i+2 : len(field)-1] {
	case "ERROR":
		return field[:i], LevelError
	case "WARNING":
		return field[:i], LevelWarning
	case "NOTICE":
		return field[:i], LevelNotice
	}
	return field, LevelNone
}
