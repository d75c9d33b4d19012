package pathmap

import (
	"testing"

	"sblogz/sboxlog"
)

func mapped(fn, src, dst string) sboxlog.Event {
	return sboxlog.Event{Kind: sboxlog.EvMapped, Function: fn, Path: src, Dest: dst}
}

func passed(fn, path string) sboxlog.Event {
	return sboxlog.Event{Kind: sboxlog.EvPassed, Function: fn, Path: path}
}

var sh = sboxlog.Identity{Name: "sh", Pid: 100}

func TestMappedSymmetry(t *testing.T) {
	s := sboxlog.NewSession()
	st := NewStore(Config{})
	st.Apply(s, sh, mapped("open", "/a", "/x"))
	st.Apply(s, sh, mapped("open", "/b", "/x"))
	st.Apply(s, sh, mapped("access", "/a", "/y"))

	// dest in references(by_source[src]) iff src in references(by_dest[dest])
	for src, e := range st.BySource {
		for dst := range e.References {
			if !st.ByDest[dst].References[src] {
				t.Errorf("Asymmetric: %s -> %s missing in by-dest", src, dst)
			}
		}
	}
	for dst, e := range st.ByDest {
		for src := range e.References {
			if !st.BySource[src].References[dst] {
				t.Errorf("Asymmetric: %s <- %s missing in by-source", dst, src)
			}
		}
	}
}

func TestMappedIdempotence(t *testing.T) {
	s := sboxlog.NewSession()
	st := NewStore(Config{})
	st.Apply(s, sh, mapped("open", "/a", "/x"))
	st.Apply(s, sh, mapped("open", "/a", "/x"))
	e := st.BySource["/a"]
	if e == nil {
		t.Fatal("Missing entry")
	}
	if e.Count != 2 {
		t.Errorf("Expected count 2, got %d", e.Count)
	}
	if len(e.References) != 1 {
		t.Errorf("References is a set, expected 1, got %d", len(e.References))
	}
	if len(st.BySource.Ambiguous()) != 0 {
		t.Errorf("Repeated identical mapping must not be ambiguous")
	}
}

func TestAmbiguityDetection(t *testing.T) {
	// Same source to two destinations, from two different functions.
	s := sboxlog.NewSession()
	st := NewStore(Config{})
	st.Apply(s, sh, mapped("open", "/a", "/x"))
	st.Apply(s, sh, mapped("execve", "/a", "/y"))

	e := st.BySource["/a"]
	if len(e.References) != 2 || !e.References["/x"] || !e.References["/y"] {
		t.Errorf("Bad references: %v", e.References)
	}
	if len(e.Functions) != 2 {
		t.Errorf("Expected 2 functions, got %v", e.Functions)
	}
	amb := st.BySource.Ambiguous()
	if len(amb) != 1 || amb[0] != "/a" {
		t.Errorf("Expected /a flagged, got %v", amb)
	}
	if len(st.ByDest.Ambiguous()) != 0 {
		t.Errorf("Destinations are unambiguous here, got %v", st.ByDest.Ambiguous())
	}
}

func TestBlacklist(t *testing.T) {
	s := sboxlog.NewSession()
	st := NewStore(Config{})
	st.Apply(s, sh, mapped("stat", "/a", "/x"))
	st.Apply(s, sh, mapped("__xstat64", "/a", "/x"))
	if len(st.BySource) != 0 {
		t.Errorf("Stat family must be blacklisted by default")
	}

	st = NewStore(Config{NoBlacklist: true})
	st.Apply(s, sh, mapped("stat", "/a", "/x"))
	if len(st.BySource) != 1 {
		t.Errorf("NoBlacklist must admit the stat family")
	}

	st = NewStore(Config{Blacklist: []string{"open"}})
	st.Apply(s, sh, passed("open", "/a"))
	st.Apply(s, sh, passed("access", "/b"))
	if len(st.Passed) != 1 || st.Passed["/b"] == nil {
		t.Errorf("Extended blacklist not honored: %v", st.Passed)
	}
}

func TestRootSubstitution(t *testing.T) {
	s := sboxlog.NewSession()
	s.TargetRoot = "/target"
	s.ToolsRoot = "/opt/tools"
	st := NewStore(Config{})
	st.Apply(s, sh, mapped("open", "/target/etc/x", "/etc/x"))
	st.Apply(s, sh, passed("access", "/opt/tools/bin/cc"))

	if st.BySource["<TARGET_ROOT>/etc/x"] == nil {
		t.Errorf("Target root not substituted: %v", st.BySource.SortedPaths())
	}
	if !st.BySource["<TARGET_ROOT>/etc/x"].References["/etc/x"] {
		t.Errorf("Destination reference missing")
	}
	if st.Passed["<TOOLS_ROOT>/bin/cc"] == nil {
		t.Errorf("Tools root not substituted: %v", st.Passed.SortedPaths())
	}
}

func TestProcessAndFunctionSets(t *testing.T) {
	s := sboxlog.NewSession()
	st := NewStore(Config{})
	st.Apply(s, sboxlog.Identity{Name: "sh", Pid: 1}, passed("open", "/a"))
	st.Apply(s, sboxlog.Identity{Name: "gcc", Pid: 2}, passed("open", "/a"))
	e := st.Passed["/a"]
	if len(e.Processes) != 2 || !e.Processes["sh"] || !e.Processes["gcc"] {
		t.Errorf("Bad process set: %v", e.Processes)
	}
	if len(e.Functions) != 1 {
		t.Errorf("Bad function set: %v", e.Functions)
	}
}
