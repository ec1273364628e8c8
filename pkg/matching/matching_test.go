package matching

import "testing"

func isIndependent(g *Graph, left, right []int) bool {
	inRight := make(map[int]bool)
	for _, v := range right {
		inRight[v] = true
	}
	for _, u := range left {
		for _, v := range g.Adj[u] {
			if inRight[v] {
				return false
			}
		}
	}
	return true
}

func TestHopcroftKarp(t *testing.T) {
	tests := []struct {
		name  string
		left  int
		right int
		edges [][2]int
		want  int
	}{
		{"empty", 2, 2, nil, 0},
		{"single", 1, 1, [][2]int{{0, 0}}, 1},
		{"complete 2x2", 2, 2, [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, 2},
		{"star", 3, 1, [][2]int{{0, 0}, {1, 0}, {2, 0}}, 1},
		{"augmenting path", 3, 3, [][2]int{{0, 0}, {0, 1}, {1, 0}, {2, 1}, {2, 2}}, 3},
		{"path", 3, 2, [][2]int{{0, 0}, {1, 0}, {1, 1}, {2, 1}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph(tt.left, tt.right)
			for _, e := range tt.edges {
				g.AddEdge(e[0], e[1])
			}
			m := HopcroftKarp(g)
			if m.Size != tt.want {
				t.Errorf("expected matching size %d, got %d", tt.want, m.Size)
			}
			for u, v := range m.MatchL {
				if v != Free && m.MatchR[v] != u {
					t.Errorf("inconsistent match %d -> %d", u, v)
				}
			}

			coverL, coverR := MinVertexCover(g, m)
			size := 0
			for _, c := range coverL {
				if c {
					size++
				}
			}
			for _, c := range coverR {
				if c {
					size++
				}
			}
			if size != m.Size {
				t.Errorf("Koenig: cover size %d != matching size %d", size, m.Size)
			}
			for u, adj := range g.Adj {
				for _, v := range adj {
					if !coverL[u] && !coverR[v] {
						t.Errorf("edge (%d,%d) not covered", u, v)
					}
				}
			}

			l, r := MaxIndependentSet(g)
			if !isIndependent(g, l, r) {
				t.Errorf("independent set %v/%v contains an edge", l, r)
			}
			if len(l)+len(r) != tt.left+tt.right-tt.want {
				t.Errorf("expected independent set of %d, got %d", tt.left+tt.right-tt.want, len(l)+len(r))
			}
		})
	}
}

func TestAddEdgeOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewGraph(1, 1).AddEdge(0, 1)
}
