// Process tree reconstruction from start/exit/exec-marker events.
//
// The tree is an arena: the Tree owns every Node, and parent/child links are
// arena indexes, never pointers, so reused pids and back-references cause no
// ownership tangles.  A pid maps to at most one live node at a time; when a
// pid is reused the live-table slot is overwritten but the old node stays
// reachable through its parent's child list and through the arena itself.

package process

import (
	"regexp"

	"sblogz/sboxlog"
)

type NodeID int

const NoNode NodeID = -1

type Timing struct {
	Elapsed float64
	User    float64
	Sys     float64
}

type Node struct {
	ID   NodeID
	Pid  int
	Ppid int

	Name    string // current name, after any re-execs
	Policy  string // current exec policy
	Binary  string
	Program *Program // nil until an identity is known

	Parent          NodeID
	Adopted         bool // parent recovered via the orphan table
	Children        []NodeID
	AdoptedChildren []NodeID

	// Every re-exec pushes the old name/policy and appends a start time, so
	// len(NameHistory) == len(PolicyHistory) == len(StartTimes)-1 always.
	NameHistory   []string
	PolicyHistory []string
	StartTimes    []string

	ExitStatus string  // numeric code or signal description, "" if never seen
	Exited     bool    // distinguishes status "" from "exited, status unknown"
	Timing     *Timing // nil unless accounting data was correlated
}

type Tree struct {
	Nodes    []*Node
	Programs map[ProgramKey]*Program
	First    NodeID // first observed process, bootstrap names excluded

	// Legacy flat counter (updated even for pid-less tokens) and per-name
	// instance counter (nodes only).
	NameCounts map[string]int
	Instances  map[string]int

	live    map[int]NodeID // pid -> live node
	orphans map[int]int    // future child pid -> announcing pid
}

func NewTree() *Tree {
	return &Tree{
		Programs:   make(map[ProgramKey]*Program),
		First:      NoNode,
		NameCounts: make(map[string]int),
		Instances:  make(map[string]int),
		live:       make(map[int]NodeID),
		orphans:    make(map[int]int),
	}
}

// MT: Constant after initialization; immutable
var bootstrapRe = regexp.MustCompile(`^sb2:[A-Z]\w*$`)

// Start consumes one start event attributed to ident.  The same pid may
// legitimately be started many times: while it is live that is a re-exec of
// the same process, after an exit it is a reused pid and gets a fresh node.

func (t *Tree) Start(ident sboxlog.Identity, ev sboxlog.Event, timestamp string) {
	if ident.Pid == sboxlog.NoPid {
		t.NameCounts[ident.Name]++
		return
	}

	prog := t.programFor(ProgramKey{Policy: ev.Policy, Binary: ev.Binary})

	var node *Node
	if id, found := t.live[ident.Pid]; found {
		// Same-process re-exec.
		node = t.Nodes[id]
		node.NameHistory = append(node.NameHistory, node.Name)
		node.PolicyHistory = append(node.PolicyHistory, node.Policy)
		node.StartTimes = append(node.StartTimes, timestamp)
		node.Name = ident.Name
		node.Policy = ev.Policy
		node.Binary = ev.Binary
		if node.Program == nil && prog != nil {
			// The bootstrap shell starts with no program identity and gets
			// one retroactively on its first real exec.  Any call-graph edge
			// already recorded under the placeholder is left alone.
			node.Program = prog
		}
	} else {
		node = &Node{
			ID:         NodeID(len(t.Nodes)),
			Pid:        ident.Pid,
			Ppid:       ev.Ppid,
			Name:       ident.Name,
			Policy:     ev.Policy,
			Binary:     ev.Binary,
			Program:    prog,
			Parent:     NoNode,
			StartTimes: []string{timestamp},
		}
		t.Nodes = append(t.Nodes, node)
		t.attachParent(node)
		t.live[ident.Pid] = node.ID
		if t.First == NoNode && !bootstrapRe.MatchString(ident.Name) {
			t.First = node.ID
		}
	}

	// Direct call-graph edge from the parent's program, idempotently.
	if node.Parent != NoNode && prog != nil {
		if pp := t.Nodes[node.Parent].Program; pp != nil {
			pp.Executed[prog.Key] = true
		}
	}

	t.NameCounts[ident.Name]++
	t.Instances[ident.Name]++
}

// attachParent resolves the parent by direct ppid lookup, falling back to
// the orphan table.  A double miss leaves the node rootless, which is normal
// for the session root and for children of processes the log never saw.

func (t *Tree) attachParent(node *Node) {
	if id, found := t.live[node.Ppid]; found {
		node.Parent = id
		t.Nodes[id].Children = append(t.Nodes[id].Children, node.ID)
		return
	}
	if alt, found := t.orphans[node.Pid]; found {
		if id, found := t.live[alt]; found {
			node.Parent = id
			node.Adopted = true
			t.Nodes[id].AdoptedChildren = append(t.Nodes[id].AdoptedChildren, node.ID)
		}
	}
}

// Exit consumes an exit event.  An exit for a pid never seen starting is
// ignored - the log may be truncated at the front.  The live-table slot is
// freed; the node remains reachable through the arena and the tree links.

func (t *Tree) Exit(ev sboxlog.Event) {
	id, found := t.live[ev.Pid]
	if !found {
		return
	}
	node := t.Nodes[id]
	node.ExitStatus = ev.Status
	node.Exited = true
	delete(t.live, ev.Pid)
}

// ExecMarker records that the announcing process is about to create the
// named descendant.  Consulted, never authoritative: it matters only if the
// child's own start event cannot resolve its ppid directly.

func (t *Tree) ExecMarker(ident sboxlog.Identity, ev sboxlog.Event) {
	if ident.Pid == sboxlog.NoPid {
		return
	}
	t.orphans[ev.ChildPid] = ident.Pid
}

// LiveNode returns the live node for a pid, or nil.

func (t *Tree) LiveNode(pid int) *Node {
	if id, found := t.live[pid]; found {
		return t.Nodes[id]
	}
	return nil
}

// Unterminated counts processes that never got an exit event.  Not an
// error: the traced session may simply have outlived the log.

func (t *Tree) Unterminated() int {
	n := 0
	for _, node := range t.Nodes {
		if !node.Exited {
			n++
		}
	}
	return n
}
