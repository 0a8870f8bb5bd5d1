package layout

import (
	"math"
	"sort"
	"strings"

	"ideamap-canvas/domain/core/aggregates"
	"ideamap-canvas/domain/core/valueobjects"
	pkgerrors "ideamap-canvas/pkg/errors"

	"gonum.org/v1/gonum/spatial/r2"
)

// ClusterSettings tune category clustering and the bucket board
type ClusterSettings struct {
	// Uncategorized is the bucket key for nodes without a category
	Uncategorized string
	// Columns fixes the board width in buckets; zero picks ceil(sqrt(n))
	Columns    int
	CellWidth  float64
	CellHeight float64
	Gap        float64
	Origin     r2.Vec
}

// Bucket is one category container on the board
type Bucket struct {
	Key     string
	Members []valueobjects.NodeID
	Bounds  r2.Box
}

// Center returns the middle of the bucket's container
func (b Bucket) Center() r2.Vec {
	return b.Bounds.Center()
}

// BucketEdge aggregates every link running between two buckets.
// From sorts before To; Forward counts From->To links, Backward To->From.
type BucketEdge struct {
	From     string
	To       string
	Forward  int
	Backward int
}

// Count returns the total number of links aggregated
func (e BucketEdge) Count() int {
	return e.Forward + e.Backward
}

// Bidirectional reports whether links run both ways
func (e BucketEdge) Bidirectional() bool {
	return e.Forward > 0 && e.Backward > 0
}

// Clustering is the output of Cluster
type Clustering struct {
	Buckets []Bucket
	Edges   []BucketEdge
}

// BucketOf returns the key of the bucket holding id
func (c Clustering) BucketOf(id valueobjects.NodeID) (string, bool) {
	for _, b := range c.Buckets {
		for _, m := range b.Members {
			if m.Equals(id) {
				return b.Key, true
			}
		}
	}
	return "", false
}

// Cluster partitions nodes by category, sorted by key, and lays the buckets
// out on a grid. Members keep graph order inside their bucket. Links inside
// a bucket are dropped; links across buckets are aggregated per bucket pair.
func Cluster(g *aggregates.Graph, s ClusterSettings) (Clustering, error) {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return Clustering{}, pkgerrors.NewEmptyGraph("cluster layout")
	}

	keyOf := make(map[valueobjects.NodeID]string, len(ids))
	members := make(map[string][]valueobjects.NodeID)
	for _, node := range g.Nodes() {
		key := strings.TrimSpace(node.Category())
		if key == "" {
			key = s.Uncategorized
		}
		keyOf[node.ID()] = key
		members[key] = append(members[key], node.ID())
	}

	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := s.Columns
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(len(keys)))))
	}

	out := Clustering{Buckets: make([]Bucket, 0, len(keys))}
	for i, key := range keys {
		row, col := i/cols, i%cols
		corner := r2.Add(s.Origin, r2.Vec{
			X: float64(col) * (s.CellWidth + s.Gap),
			Y: float64(row) * (s.CellHeight + s.Gap),
		})
		out.Buckets = append(out.Buckets, Bucket{
			Key:     key,
			Members: members[key],
			Bounds:  r2.Box{Min: corner, Max: r2.Add(corner, r2.Vec{X: s.CellWidth, Y: s.CellHeight})},
		})
	}

	pairs := make(map[[2]string]*BucketEdge)
	for _, edge := range g.Edges() {
		from, to := keyOf[edge.Source], keyOf[edge.Target]
		if from == to {
			continue
		}

		forward := from < to
		pair := [2]string{from, to}
		if !forward {
			pair = [2]string{to, from}
		}

		agg, ok := pairs[pair]
		if !ok {
			agg = &BucketEdge{From: pair[0], To: pair[1]}
			pairs[pair] = agg
		}
		if forward {
			agg.Forward++
		} else {
			agg.Backward++
		}
	}

	for _, agg := range pairs {
		out.Edges = append(out.Edges, *agg)
	}
	sort.Slice(out.Edges, func(i, j int) bool {
		if out.Edges[i].From != out.Edges[j].From {
			return out.Edges[i].From < out.Edges[j].From
		}
		return out.Edges[i].To < out.Edges[j].To
	})

	return out, nil
}
