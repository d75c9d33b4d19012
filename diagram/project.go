// Projection of the final aggregates onto diagram models.  Read-only: the
// tree and totals are immutable by the time these run.

package diagram

import (
	"fmt"
	"sort"

	"sblogz/acct"
	"sblogz/process"
)

// ProcessTree builds the process-tree diagram.  When accounting data is
// present, nodes are classified by load, and visibility propagates upward:
// a classified process forces all its ancestors visible so the trunk is
// never pruned under a decorated leaf.  Invisible children of a visible
// parent collapse into one "N child processes" placeholder.  Without
// accounting data every node is visible and uncolored.

func ProcessTree(tree *process.Tree, totals *acct.Totals) *Graph {
	g := NewGraph("processes")

	classes := make(map[int]Class)
	visible := make(map[process.NodeID]bool)
	if totals != nil && totals.Correlated > 0 {
		loads := make([]Load, 0)
		for _, node := range tree.Nodes {
			if node.Timing != nil {
				loads = append(loads, Load{ID: int(node.ID), Time: node.Timing.User + node.Timing.Sys})
			}
		}
		classes = ClassifyLoads(loads)
		for id := range classes {
			for nid := process.NodeID(id); nid != process.NoNode; nid = tree.Nodes[nid].Parent {
				visible[nid] = true
			}
		}
		// Rootless nodes stay as trunks of their own.
		for _, node := range tree.Nodes {
			if node.Parent == process.NoNode {
				visible[node.ID] = true
			}
		}
	} else {
		for _, node := range tree.Nodes {
			visible[node.ID] = true
		}
	}

	for _, node := range tree.Nodes {
		if !visible[node.ID] {
			continue
		}
		g.AddNode(nodeID(node), processLabel(node, totals), classes[int(node.ID)].Color())

		hidden := 0
		for _, links := range [][]process.NodeID{node.Children, node.AdoptedChildren} {
			for _, cid := range links {
				if !visible[cid] {
					hidden++
				}
			}
		}
		if hidden > 0 {
			pid := fmt.Sprintf("hidden-%d", node.ID)
			g.AddNode(pid, fmt.Sprintf("%d child processes", hidden), "")
			g.AddEdge(nodeID(node), pid, false)
		}
	}
	for _, node := range tree.Nodes {
		if !visible[node.ID] || node.Parent == process.NoNode || !visible[node.Parent] {
			continue
		}
		g.AddEdge(nodeID(tree.Nodes[node.Parent]), nodeID(node), node.Adopted)
	}
	return g
}

// CallGraph builds the program call-graph diagram from the Executed sets.
// All edges are direct calls, hence solid.

func CallGraph(tree *process.Tree, totals *acct.Totals) *Graph {
	g := NewGraph("programs")

	programs := make([]*process.Program, 0, len(tree.Programs))
	for _, p := range tree.Programs {
		programs = append(programs, p)
	}
	sort.Slice(programs, func(i, j int) bool {
		a, b := programs[i].Key, programs[j].Key
		if a.Binary != b.Binary {
			return a.Binary < b.Binary
		}
		return a.Policy < b.Policy
	})

	classes := make(map[int]Class)
	if totals != nil && totals.Correlated > 0 {
		loads := make([]Load, 0, len(programs))
		for i, p := range programs {
			loads = append(loads, Load{ID: i, Time: p.User + p.Sys})
		}
		classes = ClassifyLoads(loads)
	}

	for i, p := range programs {
		g.AddNode(programID(p.Key), programLabel(p, totals), classes[i].Color())
	}
	for _, p := range programs {
		callees := make([]process.ProgramKey, 0, len(p.Executed))
		for callee := range p.Executed {
			callees = append(callees, callee)
		}
		sort.Slice(callees, func(i, j int) bool {
			if callees[i].Binary != callees[j].Binary {
				return callees[i].Binary < callees[j].Binary
			}
			return callees[i].Policy < callees[j].Policy
		})
		for _, callee := range callees {
			g.AddEdge(programID(p.Key), programID(callee), false)
		}
	}
	return g
}

func nodeID(node *process.Node) string {
	return fmt.Sprintf("p%d", node.ID)
}

func processLabel(node *process.Node, totals *acct.Totals) string {
	label := fmt.Sprintf("%s[%d]", node.Name, node.Pid)
	if node.Exited {
		label += fmt.Sprintf("\nexit: %s", node.ExitStatus)
	}
	if node.Timing != nil {
		label += fmt.Sprintf("\n%.2fs u+s", node.Timing.User+node.Timing.Sys)
		if totals != nil {
			if sum := totals.UserSum + totals.SysSum; sum > 0 {
				label += fmt.Sprintf(" (%.0f%%)", (node.Timing.User+node.Timing.Sys)/sum*100)
			}
		}
	}
	return label
}

func programID(key process.ProgramKey) string {
	return key.Policy + ":" + key.Binary
}

func programLabel(p *process.Program, totals *acct.Totals) string {
	label := p.Key.Binary
	if label == "" {
		label = "(unknown)"
	}
	if p.Key.Policy != "" {
		label += "\npolicy: " + p.Key.Policy
	}
	label += fmt.Sprintf("\n%d instances", p.Instances)
	if totals != nil && totals.Correlated > 0 && p.User+p.Sys > 0 {
		label += fmt.Sprintf("\n%.2fs u+s", p.User+p.Sys)
		if sum := totals.UserSum + totals.SysSum; sum > 0 {
			label += fmt.Sprintf(" (%.0f%%)", (p.User+p.Sys)/sum*100)
		}
	}
	return label
}
