package dep

import "testing"

type itemID int

type edgeMap map[itemID][]itemID

func (m edgeMap) Collect(item itemID) []itemID {
	return m[item]
}

func groupItems(groups []Group[itemID]) [][]itemID {
	out := make([][]itemID, len(groups))
	for i, group := range groups {
		out[i] = group.Items
	}
	return out
}

func TestProcessLinearOrder(t *testing.T) {
	// 3 depends on 2 depends on 1.
	edges := edgeMap{3: {2}, 2: {1}, 1: nil}
	groups := NewProcessor([]itemID{1, 2, 3}).Process(edges)
	got := groupItems(groups)
	want := [][]itemID{{1}, {2}, {3}}
	if len(got) != len(want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}
	for i := range want {
		if len(got[i]) != 1 || got[i][0] != want[i][0] {
			t.Errorf("group %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestProcessMergesCycles(t *testing.T) {
	// 1 and 2 are mutually recursive; 3 depends on the pair.
	edges := edgeMap{1: {2}, 2: {1}, 3: {1}}
	groups := NewProcessor([]itemID{1, 2, 3}).Process(edges)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2: %v", len(groups), groupItems(groups))
	}
	first := groups[0].Items
	if len(first) != 2 || first[0] != 1 || first[1] != 2 {
		t.Errorf("first group = %v, want [1 2]", first)
	}
	second := groups[1].Items
	if len(second) != 1 || second[0] != 3 {
		t.Errorf("second group = %v, want [3]", second)
	}
}

func TestProcessSelfRecursion(t *testing.T) {
	edges := edgeMap{1: {1}}
	groups := NewProcessor([]itemID{1}).Process(edges)
	if len(groups) != 1 || len(groups[0].Items) != 1 {
		t.Fatalf("groups = %v", groupItems(groups))
	}
}

func TestProcessDeterministic(t *testing.T) {
	edges := edgeMap{1: nil, 2: nil, 3: nil}
	first := groupItems(NewProcessor([]itemID{3, 1, 2}).Process(edges))
	second := groupItems(NewProcessor([]itemID{2, 3, 1}).Process(edges))
	for i := range first {
		if first[i][0] != second[i][0] {
			t.Fatalf("orders differ: %v vs %v", first, second)
		}
	}
}
