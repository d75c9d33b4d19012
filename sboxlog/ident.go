package sboxlog

import (
	"regexp"
	"strconv"
)

// MT: Constant after initialization; immutable
var (
	// Longest shape first.  The name part is greedy and the match is anchored
	// at the end of the token, so a name that itself contains brackets (a
	// nested shell, say "sh [x][123]") decodes the trailing group as the pid.
	pidTidRe = regexp.MustCompile(`^(.*)\[(\d+)/(\d+)\]$`)
	pidRe    = regexp.MustCompile(`^(.*)\[(\d+)\]$`)
)

// ParseIdentity decodes a process token.  Unrecognized shapes yield the
// whole token as the name with Pid == NoPid.

func ParseIdentity(token string) Identity {
	if m := pidTidRe.FindStringSubmatch(token); m != nil {
		pid, _ := strconv.Atoi(m[2])
		tid, _ := strconv.Atoi(m[3])
		return Identity{Name: m[1], Pid: pid, Tid: tid}
	}
	if m := pidRe.FindStringSubmatch(token); m != nil {
		pid, _ := strconv.Atoi(m[2])
		return Identity{Name: m[1], Pid: pid}
	}
	return Identity{Name: token, Pid: NoPid}
}
