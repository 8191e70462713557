// Package cfg is a reference control-flow-graph builder over the dispatch
// core's resolver seam. It owns worklist order, deduplication and storage;
// classification stays with the resolver.
package cfg

import (
	"encoding/json"
	"sort"

	"github.com/lophius/drover"
	"github.com/lophius/drover/models"
)

// Node is one resolved address. Size and Insns are only set for block
// nodes, Variant only for hook nodes.
type Node struct {
	Addr    uint64
	Size    uint64
	Kind    drover.UnitKind
	Variant string
	Insns   int
	Symbol  string
}

type Edge struct {
	From, To uint64
	Kind     models.JumpKind
}

type Graph struct {
	entry uint64
	nodes map[uint64]*Node
	edges map[uint64][]Edge
}

func NewGraph(entry uint64) *Graph {
	return &Graph{
		entry: entry,
		nodes: make(map[uint64]*Node),
		edges: make(map[uint64][]Edge),
	}
}

func (g *Graph) Entry() uint64 { return g.entry }
func (g *Graph) Len() int      { return len(g.nodes) }

func (g *Graph) AddNode(n *Node) {
	g.nodes[n.Addr] = n
}

func (g *Graph) Node(addr uint64) *Node {
	return g.nodes[addr]
}

// Nodes returns every node sorted by address.
func (g *Graph) Nodes() []*Node {
	ret := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		ret = append(ret, n)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Addr < ret[j].Addr })
	return ret
}

func (g *Graph) AddEdge(from, to uint64, kind models.JumpKind) {
	g.edges[from] = append(g.edges[from], Edge{From: from, To: to, Kind: kind})
}

func (g *Graph) Edges(addr uint64) []Edge {
	return g.edges[addr]
}

// AllEdges returns every edge sorted by source, then target.
func (g *Graph) AllEdges() []Edge {
	var ret []Edge
	for _, edges := range g.edges {
		ret = append(ret, edges...)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].From != ret[j].From {
			return ret[i].From < ret[j].From
		}
		return ret[i].To < ret[j].To
	})
	return ret
}

type jsonNode struct {
	Addr    uint64 `json:"addr"`
	Size    uint64 `json:"size,omitempty"`
	Kind    string `json:"kind"`
	Variant string `json:"variant,omitempty"`
	Insns   int    `json:"insns,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
}

type jsonEdge struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
	Kind string `json:"kind"`
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	nodes := make([]jsonNode, 0, len(g.nodes))
	for _, n := range g.Nodes() {
		nodes = append(nodes, jsonNode{
			Addr:    n.Addr,
			Size:    n.Size,
			Kind:    n.Kind.String(),
			Variant: n.Variant,
			Insns:   n.Insns,
			Symbol:  n.Symbol,
		})
	}
	edges := make([]jsonEdge, 0)
	for _, e := range g.AllEdges() {
		edges = append(edges, jsonEdge{From: e.From, To: e.To, Kind: e.Kind.String()})
	}
	return json.Marshal(struct {
		Entry uint64     `json:"entry"`
		Nodes []jsonNode `json:"nodes"`
		Edges []jsonEdge `json:"edges"`
	}{g.entry, nodes, edges})
}
