package diagram

import (
	"bytes"
	"strings"
	"testing"

	"sblogz/acct"
	"sblogz/process"
	"sblogz/sboxlog"
)

func start(ppid int, binary string) sboxlog.Event {
	return sboxlog.Event{Kind: sboxlog.EvStart, Ppid: ppid, Binary: binary, Policy: "p"}
}

func ident(name string, pid int) sboxlog.Identity {
	return sboxlog.Identity{Name: name, Pid: pid}
}

func TestProcessTreeVisibilityAndCollapse(t *testing.T) {
	tr := process.NewTree()
	tr.Start(ident("root", 1), start(0, "/bin/root"), "t0")
	tr.Start(ident("mid", 2), start(1, "/bin/mid"), "t1")
	tr.Start(ident("leaf", 3), start(2, "/bin/leaf"), "t2")
	tr.Start(ident("idle1", 4), start(1, "/bin/idle"), "t3")
	tr.Start(ident("idle2", 5), start(1, "/bin/idle"), "t4")

	// Only the leaf has correlated time, so only it is classified; its
	// ancestors must still be visible and the idle siblings collapsed.
	tr.Nodes[2].Timing = &process.Timing{User: 3, Sys: 1}
	totals := &acct.Totals{Correlated: 1, UserSum: 3, SysSum: 1}

	g := ProcessTree(tr, totals)

	labels := make(map[string]string)
	colors := make(map[string]string)
	for _, n := range g.Nodes {
		labels[n.ID] = n.Label
		colors[n.ID] = n.Color
	}
	for _, id := range []string{"p0", "p1", "p2"} {
		if _, found := labels[id]; !found {
			t.Errorf("Node %s must be visible", id)
		}
	}
	if colors["p2"] != ClassTop.Color() {
		t.Errorf("Leaf must be colored top, got %q", colors["p2"])
	}
	if colors["p0"] != "" || colors["p1"] != "" {
		t.Errorf("Ancestors are visible but unclassified")
	}
	if _, found := labels["p3"]; found {
		t.Errorf("Idle sibling must be invisible")
	}
	if labels["hidden-0"] != "2 child processes" {
		t.Errorf("Expected collapse placeholder, got %q", labels["hidden-0"])
	}
}

func TestProcessTreeAdoptedEdgeIsDashed(t *testing.T) {
	tr := process.NewTree()
	tr.Start(ident("root", 1), start(0, "/bin/root"), "t0")
	tr.ExecMarker(ident("root", 1), sboxlog.Event{Kind: sboxlog.EvExecMarker, ChildPid: 9})
	tr.Start(ident("waif", 9), start(777, "/bin/waif"), "t1")

	g := ProcessTree(tr, nil)
	found := false
	for _, e := range g.Edges {
		if e.From == "p0" && e.To == "p1" {
			found = true
			if !e.Dashed {
				t.Errorf("Adopted edge must be dashed")
			}
		}
	}
	if !found {
		t.Errorf("Missing edge for adopted child")
	}
}

func TestCallGraph(t *testing.T) {
	tr := process.NewTree()
	tr.Start(ident("sh", 1), start(0, "/bin/sh"), "t0")
	tr.Start(ident("gcc", 2), start(1, "/usr/bin/gcc"), "t1")
	tr.Start(ident("gcc", 3), start(1, "/usr/bin/gcc"), "t2")

	g := CallGraph(tr, nil)
	if len(g.Nodes) != 2 {
		t.Fatalf("Expected 2 program nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("Executed is a set, expected 1 edge, got %d", len(g.Edges))
	}
	e := g.Edges[0]
	if e.From != "p:/bin/sh" || e.To != "p:/usr/bin/gcc" || e.Dashed {
		t.Errorf("Bad call edge: %+v", e)
	}
	for _, n := range g.Nodes {
		if n.ID == "p:/usr/bin/gcc" && !strings.Contains(n.Label, "2 instances") {
			t.Errorf("Expected instance count in label, got %q", n.Label)
		}
	}
}

func TestWriteDot(t *testing.T) {
	g := NewGraph("processes")
	g.AddNode("a", "first\nline two", "red")
	g.AddNode("b", "second", "")
	g.AddEdge("a", "b", true)

	var buf bytes.Buffer
	if err := g.WriteDot(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`digraph "processes" {`,
		`"a" [label="first\nline two",style=filled,fillcolor="red"];`,
		`"b" [label="second"];`,
		`"a" -> "b" [style=dashed];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in output:\n%s", want, out)
		}
	}
}
