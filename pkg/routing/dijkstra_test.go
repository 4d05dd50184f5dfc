package routing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadgraph/pkg/graph"
)

const (
	nodeA graph.NodeID = 1
	nodeB graph.NodeID = 2
	nodeC graph.NodeID = 3
)

// buildTriangle creates A(0,0), B(0,1), C(1,1) with A→B(1), B→C(1), A→C(5).
func buildTriangle(t testing.TB) *graph.Store {
	t.Helper()
	s, err := graph.Build(
		[]graph.Node{{ID: nodeA, X: 0, Y: 0}, {ID: nodeB, X: 0, Y: 1}, {ID: nodeC, X: 1, Y: 1}},
		[]graph.Edge{
			{From: nodeA, To: nodeB, Weight: 1},
			{From: nodeB, To: nodeC, Weight: 1},
			{From: nodeA, To: nodeC, Weight: 5},
		},
	)
	require.NoError(t, err)
	return s
}

func TestShortestPathTriangle(t *testing.T) {
	s := buildTriangle(t)

	path, ok, err := ShortestPath(s, nodeA, nodeC)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Path{nodeA, nodeB, nodeC}, path)

	w, err := s.PathWeight(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, w)
}

func TestShortestPathSameNode(t *testing.T) {
	s := buildTriangle(t)
	path, ok, err := ShortestPath(s, nodeB, nodeB)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Path{nodeB}, path)
}

func TestShortestPathRespectsDirection(t *testing.T) {
	s := buildTriangle(t)
	path, ok, err := ShortestPath(s, nodeC, nodeA)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, path)
}

func TestShortestPathUnknownNode(t *testing.T) {
	s := buildTriangle(t)

	_, _, err := ShortestPath(s, 42, nodeA)
	assert.ErrorIs(t, err, graph.ErrUnknownNode)

	_, _, err = ShortestPath(s, nodeA, 42)
	assert.ErrorIs(t, err, graph.ErrUnknownNode)
}

func TestShortestPathTieBreakDeterministic(t *testing.T) {
	// Two equal-weight routes 1→2→4 and 1→3→4; edge order picks the first.
	s, err := graph.Build(
		[]graph.Node{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}},
		[]graph.Edge{
			{From: 1, To: 2, Weight: 1},
			{From: 1, To: 3, Weight: 1},
			{From: 2, To: 4, Weight: 1},
			{From: 3, To: 4, Weight: 1},
		},
	)
	require.NoError(t, err)

	for range 10 {
		path, ok, err := ShortestPath(s, 1, 4)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, Path{1, 2, 4}, path)
	}
}

// bruteForceShortest enumerates every simple directed path and returns the
// minimum total weight, or +Inf when none exists.
func bruteForceShortest(s *graph.Store, src, dst uint32) float64 {
	best := math.Inf(1)
	visited := make([]bool, s.NumNodes())
	var walk func(u uint32, acc float64)
	walk = func(u uint32, acc float64) {
		if u == dst {
			best = min(best, acc)
			return
		}
		visited[u] = true
		start, end := s.EdgesFrom(u)
		for e := start; e < end; e++ {
			if v := s.Head(e); !visited[v] {
				walk(v, acc+s.Weight(e))
			}
		}
		visited[u] = false
	}
	walk(src, 0)
	return best
}

func randomDirected(t *testing.T, r *rand.Rand, n, m int) *graph.Store {
	t.Helper()
	nodes := make([]graph.Node, n)
	for i := range nodes {
		nodes[i] = graph.Node{ID: graph.NodeID(100 + i), X: r.Float64(), Y: r.Float64()}
	}
	edges := make([]graph.Edge, m)
	for i := range edges {
		edges[i] = graph.Edge{
			From:   nodes[r.Intn(n)].ID,
			To:     nodes[r.Intn(n)].ID,
			Weight: float64(r.Intn(10)), // zero weights included
		}
	}
	s, err := graph.Build(nodes, edges)
	require.NoError(t, err)
	return s
}

func TestShortestPathMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := range 40 {
		n := 2 + trial%6
		s := randomDirected(t, r, n, n*2)

		for src := uint32(0); src < s.NumNodes(); src++ {
			for dst := uint32(0); dst < s.NumNodes(); dst++ {
				origin, destination := s.Node(src).ID, s.Node(dst).ID
				want := bruteForceShortest(s, src, dst)

				path, ok, err := ShortestPath(s, origin, destination)
				require.NoError(t, err)
				if math.IsInf(want, 1) {
					assert.False(t, ok, "trial %d %d->%d: expected no path", trial, origin, destination)
					continue
				}
				require.True(t, ok, "trial %d %d->%d: expected a path", trial, origin, destination)
				assert.Equal(t, origin, path[0])
				assert.Equal(t, destination, path[len(path)-1])

				got, err := s.PathWeight(path)
				require.NoError(t, err, "path must follow stored edges")
				assert.Equal(t, want, got, "trial %d %d->%d", trial, origin, destination)

				again, _, _ := ShortestPath(s, origin, destination)
				assert.Equal(t, path, again)
			}
		}
	}
}

func TestMinHeap(t *testing.T) {
	var h MinHeap

	h.Push(1, 30)
	h.Push(2, 10)
	h.Push(3, 20)
	h.Push(4, 10)

	assert.Equal(t, 10.0, h.PeekDist())

	want := []PQItem{{Node: 2, Dist: 10}, {Node: 4, Dist: 10}, {Node: 3, Dist: 20}, {Node: 1, Dist: 30}}
	for _, w := range want {
		item := h.Pop()
		assert.Equal(t, w.Node, item.Node)
		assert.Equal(t, w.Dist, item.Dist)
	}
	assert.Zero(t, h.Len())
	assert.True(t, math.IsInf(h.PeekDist(), 1))
}

func BenchmarkShortestPath(b *testing.B) {
	r := rand.New(rand.NewSource(3))
	const n = 1000
	nodes := make([]graph.Node, n)
	for i := range nodes {
		nodes[i] = graph.Node{ID: graph.NodeID(i), X: r.Float64(), Y: r.Float64()}
	}
	var edges []graph.Edge
	for i := 1; i < n; i++ {
		edges = append(edges,
			graph.Edge{From: graph.NodeID(i - 1), To: graph.NodeID(i), Weight: 1 + r.Float64()},
			graph.Edge{From: graph.NodeID(i), To: graph.NodeID(r.Intn(n)), Weight: 1 + 10*r.Float64()},
		)
	}
	s, err := graph.Build(nodes, edges)
	require.NoError(b, err)

	for b.Loop() {
		_, _, _ = ShortestPath(s, 0, n-1)
	}
}
