package analyze

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"sblogz/pathmap"
)

const simpleLog = `#SBOX_TARGET_ROOT=/target
#SBOX_MAPMODE=simple
10:00:00.000	sh[100]	process started, version=2.3 (git abc) ppid=1 binary='/bin/sh' policy='Default'
10:00:00.100	sh[100]	mapped: open '/target/etc/x' -> '/etc/x'	mapping.c:10
10:00:00.200	sh[100]	process 100 exited with status 0
`

func TestRunSimpleSession(t *testing.T) {
	a, err := Run(strings.NewReader(simpleLog), Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	s := a.Session
	if s.Lines != 5 || s.Accepted != 3 {
		t.Errorf("Expected 5 lines / 3 records, got %d / %d", s.Lines, s.Accepted)
	}
	if s.TargetRoot != "/target" || s.MapMode != "simple" {
		t.Errorf("Session variables not picked up: %+v", s)
	}
	if len(s.Errors) != 0 || len(s.Warnings) != 0 {
		t.Errorf("Expected a clean session")
	}

	if len(a.Tree.Nodes) != 1 {
		t.Fatalf("Expected one process, got %d", len(a.Tree.Nodes))
	}
	node := a.Tree.Nodes[0]
	if node.Name != "sh" || node.Pid != 100 || node.Ppid != 1 {
		t.Errorf("Bad node identity: %+v", node)
	}
	if !node.Exited || node.ExitStatus != "0" {
		t.Errorf("Expected exit status 0, got exited=%v status=%q", node.Exited, node.ExitStatus)
	}
	if a.Tree.First != node.ID {
		t.Errorf("Expected the shell to be the first process")
	}

	e, found := a.Paths.BySource["<TARGET_ROOT>/etc/x"]
	if !found {
		t.Fatalf("Mapped path not indexed under substituted source")
	}
	if e.Count != 1 || !e.References["/etc/x"] || !e.Functions["open"] || !e.Processes["sh"] {
		t.Errorf("Bad source entry: %+v", e)
	}
	if _, found := a.Paths.ByDest["/etc/x"]; !found {
		t.Errorf("Mapped path not mirrored under destination")
	}
}

const orphanLog = `10:00:00	sb2:Exec[50]	process started, version=2.3 () ppid=1 binary='' policy=''
10:00:01	sb2:Exec[50]	preparing to exec, child pid=51
10:00:02	make[51]	process started, version=2.3 () ppid=7 binary='/usr/bin/make' policy='Devel'
10:00:03	make[51]	pass: stat64 '/tmp/y'
10:00:04	make[51]	pass: access '/tmp/y'
`

func TestRunOrphanAdoption(t *testing.T) {
	a, err := Run(strings.NewReader(orphanLog), Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// The bootstrap process announced pid 51; ppid 7 is unknown, so the
	// child attaches to the announcer as adopted.
	child := a.Tree.LiveNode(51)
	if child == nil {
		t.Fatalf("Expected make to be live")
	}
	if !child.Adopted || child.Parent != 0 {
		t.Errorf("Expected adoption by the announcer, got adopted=%v parent=%d",
			child.Adopted, child.Parent)
	}
	if a.Tree.First != child.ID {
		t.Errorf("Bootstrap names must not claim the first slot")
	}

	// stat64 is blacklisted by default, access is not.
	if _, found := a.Paths.Passed["/tmp/y"]; !found {
		t.Fatalf("Expected a passed entry for /tmp/y")
	}
	e := a.Paths.Passed["/tmp/y"]
	if e.Count != 1 || e.Functions["stat64"] || !e.Functions["access"] {
		t.Errorf("Blacklist not applied: %+v", e)
	}
}

func TestRunNoBlacklist(t *testing.T) {
	a, err := Run(strings.NewReader(orphanLog), Options{NoBlacklist: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if e := a.Paths.Passed["/tmp/y"]; e == nil || e.Count != 2 {
		t.Errorf("Expected both calls counted with the blacklist off, got %+v", e)
	}
	if !a.Paths.Passed["/tmp/y"].Functions["stat64"] {
		t.Errorf("Expected stat64 recorded with the blacklist off")
	}
	if pathmap.Substitute("/x", a.Session) != "/x" {
		t.Errorf("No roots were declared, paths must be untouched")
	}
}

func acctRecord(pid, ppid int, etime float32, utime, stime uint16, comm string) []byte {
	buf := make([]byte, 64)
	buf[1] = 3
	binary.LittleEndian.PutUint32(buf[16:20], uint32(pid))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(ppid))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(etime))
	binary.LittleEndian.PutUint16(buf[32:34], utime)
	binary.LittleEndian.PutUint16(buf[34:36], stime)
	copy(buf[48:64], comm)
	return buf
}

func TestCorrelateAccounting(t *testing.T) {
	a, err := Run(strings.NewReader(simpleLog), Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var acctData bytes.Buffer
	acctData.Write(acctRecord(100, 1, 0, 200, 100, "sh"))
	acctData.Write(acctRecord(999, 1, 0, 50, 50, "other"))

	if err := a.CorrelateAccounting(&acctData, 100); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if a.Totals == nil || a.Totals.Records != 2 || a.Totals.Correlated != 1 {
		t.Fatalf("Expected 2 records / 1 correlated, got %+v", a.Totals)
	}
	node := a.Tree.Nodes[0]
	if node.Timing == nil {
		t.Fatalf("Expected timing on the correlated node")
	}
	if node.Timing.User != 2 || node.Timing.Sys != 1 {
		t.Errorf("Tick conversion at hz=100 wrong: %+v", node.Timing)
	}
	if a.Totals.UserSum != 2 || a.Totals.SysSum != 1 {
		t.Errorf("Totals must cover correlated records only: %+v", a.Totals)
	}
	prog := node.Program
	if prog == nil || prog.User != 2 || prog.Sys != 1 {
		t.Errorf("Program totals not accumulated")
	}
}
