// The diagram model: labeled nodes with an optional color, directed edges
// with an optional dashed style.  Rendering is kept behind this model so
// that the projectors know nothing about concrete graph syntax.

package diagram

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type Node struct {
	ID    string
	Label string
	Color string // "" for unclassified nodes
}

type Edge struct {
	From   string
	To     string
	Dashed bool // adopted/recovered relationship, not genuine parentage
}

type Graph struct {
	Name  string
	Nodes []Node
	Edges []Edge
}

func NewGraph(name string) *Graph {
	return &Graph{Name: name}
}

func (g *Graph) AddNode(id, label, color string) {
	g.Nodes = append(g.Nodes, Node{ID: id, Label: label, Color: color})
}

func (g *Graph) AddEdge(from, to string, dashed bool) {
	g.Edges = append(g.Edges, Edge{From: from, To: to, Dashed: dashed})
}

// WriteDot renders the model in DOT syntax.

func (g *Graph) WriteDot(out io.Writer) error {
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "digraph %s {\n", quote(g.Name))
	fmt.Fprintf(w, "\tnode [shape=box];\n")
	for _, n := range g.Nodes {
		attrs := fmt.Sprintf("label=%s", quote(n.Label))
		if n.Color != "" {
			attrs += fmt.Sprintf(",style=filled,fillcolor=%s", quote(n.Color))
		}
		fmt.Fprintf(w, "\t%s [%s];\n", quote(n.ID), attrs)
	}
	for _, e := range g.Edges {
		style := ""
		if e.Dashed {
			style = " [style=dashed]"
		}
		fmt.Fprintf(w, "\t%s -> %s%s;\n", quote(e.From), quote(e.To), style)
	}
	fmt.Fprintf(w, "}\n")
	return w.Flush()
}

// WriteDotFile renders to the named file, or to fallback when filename is
// empty.

func (g *Graph) WriteDotFile(filename string, fallback io.Writer) error {
	if filename == "" {
		return g.WriteDot(fallback)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("Failed to create diagram output\n%w", err)
	}
	defer f.Close()
	return g.WriteDot(f)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
