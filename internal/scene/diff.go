package scene

import (
	"github.com/google/go-cmp/cmp"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
)

type Kind string

const (
	KindLine   Kind = "line"
	KindDisc   Kind = "disc"
	KindLabel  Kind = "label"
	KindMarker Kind = "marker"
)

type Change struct {
	Op   Op     `json:"op"`
	Kind Kind   `json:"kind"`
	Key  string `json:"key"`
	// nil for removals
	Node any `json:"node,omitempty"`
}

// Diff reconciles prev into next by node key. Removals come first, then
// updates and creations in next's order, kind by kind.
func Diff(prev, next Scene) []Change {
	var changes []Change
	changes = diffNodes(changes, KindLine, prev.Lines, next.Lines, func(n Line) string { return n.Key })
	changes = diffNodes(changes, KindDisc, prev.Discs, next.Discs, func(n Disc) string { return n.Key })
	changes = diffNodes(changes, KindLabel, prev.Labels, next.Labels, func(n Label) string { return n.Key })
	changes = diffNodes(changes, KindMarker, prev.Markers, next.Markers, func(n EventMarker) string { return n.Key })
	return changes
}

func diffNodes[T any](changes []Change, kind Kind, prev, next []T, key func(T) string) []Change {
	old := make(map[string]T, len(prev))
	for _, n := range prev {
		old[key(n)] = n
	}

	present := make(map[string]struct{}, len(next))
	for _, n := range next {
		present[key(n)] = struct{}{}
	}
	for _, n := range prev {
		if _, ok := present[key(n)]; !ok {
			changes = append(changes, Change{Op: OpRemove, Kind: kind, Key: key(n)})
		}
	}

	for _, n := range next {
		k := key(n)
		was, ok := old[k]
		switch {
		case !ok:
			changes = append(changes, Change{Op: OpCreate, Kind: kind, Key: k, Node: n})
		case !cmp.Equal(was, n):
			changes = append(changes, Change{Op: OpUpdate, Kind: kind, Key: k, Node: n})
		}
	}
	return changes
}
