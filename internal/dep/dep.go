// Package dep groups mutually recursive items into strongly connected
// components and returns the groups in topological order. It is shared by
// the inference of untyped function groups and the data-type recursion
// check.
package dep

import "sort"

// Group is one set of mutually recursive items.
type Group[T ~int] struct {
	Items []T
}

// Collector supplies the dependency edges of an item.
type Collector[T ~int] interface {
	Collect(item T) []T
}

// Processor computes dependency groups over a fixed item set. Identifiers
// are totally ordered, which keeps the grouping deterministic.
type Processor[T ~int] struct {
	items []T
	deps  map[T][]T
}

// NewProcessor creates a processor over items.
func NewProcessor[T ~int](items []T) *Processor[T] {
	sorted := append([]T{}, items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return &Processor[T]{items: sorted, deps: make(map[T][]T)}
}

func (p *Processor[T]) dependsOn(user, usedItem T, visited map[T]bool) bool {
	if visited[user] {
		return false
	}
	visited[user] = true
	for _, dep := range p.deps[user] {
		if dep == usedItem {
			return true
		}
	}
	for _, dep := range p.deps[user] {
		if p.dependsOn(dep, usedItem, visited) {
			return true
		}
	}
	return false
}

// Process collects edges through the collector, merges cyclic dependencies
// into shared groups, and emits the groups in an order where every
// external dependency of a group precedes it. A leftover group whose
// dependencies can never be satisfied is a bug in the merging and panics.
func (p *Processor[T]) Process(collector Collector[T]) []Group[T] {
	for _, item := range p.items {
		p.deps[item] = collector.Collect(item)
	}

	// One group per item, then merge the groups of circular dependencies.
	groupOf := make(map[T]int)
	for index, item := range p.items {
		groupOf[item] = index
	}
	for _, item := range p.items {
		for _, dependency := range p.deps[item] {
			visited := make(map[T]bool)
			if p.dependsOn(dependency, item, visited) {
				from := groupOf[item]
				to := groupOf[dependency]
				if from == to {
					continue
				}
				for member, group := range groupOf {
					if group == from {
						groupOf[member] = to
					}
				}
			}
		}
	}

	groupItems := make(map[int][]T)
	for _, item := range p.items {
		group := groupOf[item]
		groupItems[group] = append(groupItems[group], item)
	}
	unprocessed := make([]int, 0, len(groupItems))
	for group := range groupItems {
		sort.Slice(groupItems[group], func(i, j int) bool {
			return groupItems[group][i] < groupItems[group][j]
		})
		unprocessed = append(unprocessed, group)
	}
	sort.Ints(unprocessed)

	processed := make(map[T]bool)
	var ordered []Group[T]
	for len(unprocessed) > 0 {
		emitted := -1
		for pos, group := range unprocessed {
			ready := true
			for _, item := range groupItems[group] {
				for _, dependency := range p.deps[item] {
					if processed[dependency] {
						continue
					}
					inGroup := false
					for _, member := range groupItems[group] {
						if member == dependency {
							inGroup = true
							break
						}
					}
					if !inGroup {
						ready = false
					}
				}
			}
			if ready {
				ordered = append(ordered, Group[T]{Items: groupItems[group]})
				for _, item := range groupItems[group] {
					processed[item] = true
				}
				emitted = pos
				break
			}
		}
		if emitted < 0 {
			panic("dep: cyclic dependency between groups")
		}
		unprocessed = append(unprocessed[:emitted], unprocessed[emitted+1:]...)
	}
	return ordered
}
