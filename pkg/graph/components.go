package graph

import "slices"

// Adjacency returns undirected neighbour lists for every node.
// Duplicate edges produce duplicate neighbours.
func (m *Model) Adjacency() [][]int {
	adj := make([][]int, len(m.Nodes))
	for _, e := range m.Edges {
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}
	return adj
}

// Components returns the connected components of the undirected graph.
// Each component is sorted by node index and components are ordered by
// their smallest member.
func (m *Model) Components() [][]int {
	adj := m.Adjacency()
	visited := make([]bool, len(adj))
	var components [][]int

	for start := range adj {
		if visited[start] {
			continue
		}
		visited[start] = true
		queue := []int{start}
		component := []int{start}

		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			for _, next := range adj[node] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
					component = append(component, next)
				}
			}
		}

		slices.Sort(component)
		components = append(components, component)
	}

	return components
}
