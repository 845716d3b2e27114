package kintree

// Scan is the generic tree traversal underlying every tree-shaped
// computation in this module. It visits links in increasing index order,
// which the parent-ordering invariant makes a topological order, and passes
// each visit the already-computed result of its parent (nil for links
// attached to the world frame). The per-link results are returned aligned to
// tree order.
//
// Per-link payloads (coordinate segments, names, types) are captured by the
// closure, which keeps the traversal itself payload-agnostic. Threading a
// running value instead of accumulating one per link is the same call with
// the fold state closed over.
//
// The traversal is iterative, so systems with thousands of links cost no
// stack growth, and runs in O(N).
func Scan[T any](sys *System, visit func(parent *T, idx int) (T, error)) ([]T, error) {
	results := make([]T, sys.NumLinks())
	for i := 0; i < sys.NumLinks(); i++ {
		var parent *T
		if p := sys.Parent(i); p >= 0 {
			parent = &results[p]
		}
		res, err := visit(parent, i)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	return results, nil
}
