package hyperstructure

import "sort"

// NodeAttrs carries the attributes stored on a law node.
type NodeAttrs struct {
	Type string `json:"type"`
}

// EdgeKey identifies a directed dependency edge from a law to one of the
// names it depends on.
type EdgeKey struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Network is the law dependency graph: explicit maps for node attributes
// and edge weights, built incrementally as universes register.
type Network struct {
	nodes map[string]NodeAttrs
	edges map[EdgeKey]float64
}

// NewNetwork returns an empty dependency graph.
func NewNetwork() *Network {
	return &Network{
		nodes: make(map[string]NodeAttrs),
		edges: make(map[EdgeKey]float64),
	}
}

// AddNode ensures a node exists for name. The first registration wins for
// the type attribute; re-adding is a no-op.
func (n *Network) AddNode(name, lawType string) {
	if _, ok := n.nodes[name]; ok {
		return
	}
	n.nodes[name] = NodeAttrs{Type: lawType}
}

// SetEdge adds or overwrites the weighted edge from a law to a dependency.
func (n *Network) SetEdge(from, to string, weight float64) {
	n.edges[EdgeKey{From: from, To: to}] = weight
}

// Node reports the attributes stored for name, if present.
func (n *Network) Node(name string) (NodeAttrs, bool) {
	attrs, ok := n.nodes[name]
	return attrs, ok
}

// EdgeWeight reports the weight of the (from, to) edge, if present.
func (n *Network) EdgeWeight(from, to string) (float64, bool) {
	w, ok := n.edges[EdgeKey{From: from, To: to}]
	return w, ok
}

// NodeCount returns the number of distinct law nodes.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of distinct dependency edges.
func (n *Network) EdgeCount() int { return len(n.edges) }

// GraphNode is the serializable form of a node.
type GraphNode struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// GraphEdge is the serializable form of a weighted edge.
type GraphEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// Dump returns a deterministic snapshot of the graph, sorted by name for
// stable API output.
func (n *Network) Dump() ([]GraphNode, []GraphEdge) {
	nodes := make([]GraphNode, 0, len(n.nodes))
	for name, attrs := range n.nodes {
		nodes = append(nodes, GraphNode{Name: name, Type: attrs.Type})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

	edges := make([]GraphEdge, 0, len(n.edges))
	for key, weight := range n.edges {
		edges = append(edges, GraphEdge{From: key.From, To: key.To, Weight: weight})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	return nodes, edges
}
