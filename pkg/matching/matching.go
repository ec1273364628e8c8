// Package matching implements maximum bipartite matching and the vertex
// cover and independent set derived from it through Koenig's theorem.
//
// Vertices are plain indices: 0..Left-1 on the left, 0..Right-1 on the right.
package matching

import (
	"fmt"
	"math"
)

// Free marks an unmatched vertex.
const Free = -1

// Graph is a bipartite graph given by the adjacency lists of its left side.
type Graph struct {
	Left, Right int
	Adj         [][]int
}

// NewGraph returns an edgeless graph.
func NewGraph(left, right int) *Graph {
	return &Graph{Left: left, Right: right, Adj: make([][]int, left)}
}

// AddEdge connects left vertex u with right vertex v.
func (g *Graph) AddEdge(u, v int) {
	if u < 0 || u >= g.Left || v < 0 || v >= g.Right {
		panic(fmt.Sprintf("matching: edge (%d,%d) outside %dx%d graph", u, v, g.Left, g.Right))
	}
	g.Adj[u] = append(g.Adj[u], v)
}

// Matching pairs left and right vertices. MatchL[u] is the right partner of
// u or Free, MatchR likewise.
type Matching struct {
	MatchL []int
	MatchR []int
	Size   int
}

// HopcroftKarp returns a maximum matching.
func HopcroftKarp(g *Graph) Matching {
	m := Matching{MatchL: make([]int, g.Left), MatchR: make([]int, g.Right)}
	for i := range m.MatchL {
		m.MatchL[i] = Free
	}
	for i := range m.MatchR {
		m.MatchR[i] = Free
	}
	dist := make([]int, g.Left)

	bfs := func() bool {
		queue := make([]int, 0, g.Left)
		for u := range g.Left {
			if m.MatchL[u] == Free {
				dist[u] = 0
				queue = append(queue, u)
			} else {
				dist[u] = math.MaxInt
			}
		}
		found := false
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range g.Adj[u] {
				w := m.MatchR[v]
				if w == Free {
					found = true
				} else if dist[w] == math.MaxInt {
					dist[w] = dist[u] + 1
					queue = append(queue, w)
				}
			}
		}
		return found
	}

	var dfs func(u int) bool
	dfs = func(u int) bool {
		for _, v := range g.Adj[u] {
			w := m.MatchR[v]
			if w == Free || (dist[w] == dist[u]+1 && dfs(w)) {
				m.MatchL[u] = v
				m.MatchR[v] = u
				return true
			}
		}
		dist[u] = math.MaxInt
		return false
	}

	for bfs() {
		for u := range g.Left {
			if m.MatchL[u] == Free && dfs(u) {
				m.Size++
			}
		}
	}
	return m
}

// MinVertexCover derives a minimum vertex cover from a maximum matching.
// Z is the set reachable from free left vertices along alternating paths;
// the cover is (Left \ Z) + (Right & Z).
func MinVertexCover(g *Graph, m Matching) (left, right []bool) {
	visitedL := make([]bool, g.Left)
	visitedR := make([]bool, g.Right)
	var stack []int
	for u := range g.Left {
		if m.MatchL[u] == Free {
			visitedL[u] = true
			stack = append(stack, u)
		}
	}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, v := range g.Adj[u] {
			if visitedR[v] || m.MatchL[u] == v {
				continue
			}
			visitedR[v] = true
			if w := m.MatchR[v]; w != Free && !visitedL[w] {
				visitedL[w] = true
				stack = append(stack, w)
			}
		}
	}

	left = make([]bool, g.Left)
	right = make([]bool, g.Right)
	for u := range g.Left {
		left[u] = !visitedL[u]
	}
	copy(right, visitedR)
	return left, right
}

// MaxIndependentSet returns a maximum independent set as the complement of
// a minimum vertex cover. Both index lists are ascending.
func MaxIndependentSet(g *Graph) (left, right []int) {
	coverL, coverR := MinVertexCover(g, HopcroftKarp(g))
	for u, c := range coverL {
		if !c {
			left = append(left, u)
		}
	}
	for v, c := range coverR {
		if !c {
			right = append(right, v)
		}
	}
	return left, right
}
