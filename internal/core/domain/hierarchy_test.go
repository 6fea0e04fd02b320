package domain

import (
	"sort"
	"testing"
)

func strPtr(s string) *string { return &s }

func themeFixture(id, name string, parent *string) Theme {
	return Theme{ID: id, Name: name, Description: name + " desc", ParentThemeID: parent}
}

func TestBuildHierarchyNestsChildrenUnderParents(t *testing.T) {
	themes := []Theme{
		themeFixture("t-billing", "Billing", nil),
		themeFixture("t-invoices", "Invoices", strPtr("t-billing")),
		themeFixture("t-refunds", "Refunds", strPtr("t-billing")),
		themeFixture("t-auth", "Auth", nil),
	}

	tree := BuildHierarchy(themes)
	if len(tree) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree))
	}
	if tree[0].Name != "Auth" || tree[1].Name != "Billing" {
		t.Fatalf("roots not name-ordered: %q, %q", tree[0].Name, tree[1].Name)
	}
	billing := tree[1]
	if len(billing.Children) != 2 {
		t.Fatalf("expected 2 children under Billing, got %d", len(billing.Children))
	}
	if billing.Children[0].Name != "Invoices" || billing.Children[1].Name != "Refunds" {
		t.Fatalf("children not name-ordered: %q, %q", billing.Children[0].Name, billing.Children[1].Name)
	}
}

func TestBuildHierarchyTreatsDanglingParentAsRoot(t *testing.T) {
	themes := []Theme{
		themeFixture("t-1", "Orphaned", strPtr("t-gone")),
		themeFixture("t-2", "Root", nil),
	}

	tree := BuildHierarchy(themes)
	if len(tree) != 2 {
		t.Fatalf("expected dangling parent to produce a root, got %d roots", len(tree))
	}
}

func TestFlattenRoundTripPreservesIDSet(t *testing.T) {
	themes := []Theme{
		themeFixture("t-5", "Epsilon", strPtr("t-3")),
		themeFixture("t-2", "Beta", strPtr("t-1")),
		themeFixture("t-4", "Delta", strPtr("t-missing")),
		themeFixture("t-1", "Alpha", nil),
		themeFixture("t-3", "Gamma", strPtr("t-1")),
	}

	flat := FlattenHierarchy(BuildHierarchy(themes))
	if len(flat) != len(themes) {
		t.Fatalf("flatten lost or duplicated nodes: got %d, want %d", len(flat), len(themes))
	}

	want := make([]string, 0, len(themes))
	got := make([]string, 0, len(flat))
	for _, theme := range themes {
		want = append(want, theme.ID)
	}
	for _, theme := range flat {
		got = append(got, theme.ID)
	}
	sort.Strings(want)
	sort.Strings(got)
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("id set mismatch at %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFlattenPlacesChildrenAfterParents(t *testing.T) {
	themes := []Theme{
		themeFixture("t-3", "Leaf", strPtr("t-2")),
		themeFixture("t-2", "Mid", strPtr("t-1")),
		themeFixture("t-1", "Top", nil),
	}

	flat := FlattenHierarchy(BuildHierarchy(themes))
	pos := make(map[string]int, len(flat))
	for i, theme := range flat {
		pos[theme.ID] = i
	}
	if pos["t-2"] <= pos["t-1"] {
		t.Fatalf("child t-2 at %d not after parent t-1 at %d", pos["t-2"], pos["t-1"])
	}
	if pos["t-3"] <= pos["t-2"] {
		t.Fatalf("child t-3 at %d not after parent t-2 at %d", pos["t-3"], pos["t-2"])
	}
}

func TestBuildHierarchyPromotesCycleMembersToRoots(t *testing.T) {
	themes := []Theme{
		themeFixture("t-a", "A", strPtr("t-b")),
		themeFixture("t-b", "B", strPtr("t-a")),
		themeFixture("t-c", "C", nil),
	}

	members := CycleMembers(themes)
	if len(members) != 2 || members[0] != "t-a" || members[1] != "t-b" {
		t.Fatalf("expected cycle members [t-a t-b], got %v", members)
	}

	tree := BuildHierarchy(themes)
	if len(tree) != 3 {
		t.Fatalf("cycle members must surface as roots, got %d roots", len(tree))
	}
	flat := FlattenHierarchy(tree)
	if len(flat) != 3 {
		t.Fatalf("no node may be hidden by a cycle: got %d, want 3", len(flat))
	}
}

func TestCycleMembersEmptyForAcyclicSet(t *testing.T) {
	themes := []Theme{
		themeFixture("t-1", "Top", nil),
		themeFixture("t-2", "Mid", strPtr("t-1")),
		themeFixture("t-3", "Leaf", strPtr("t-2")),
	}
	if members := CycleMembers(themes); len(members) != 0 {
		t.Fatalf("expected no cycle members, got %v", members)
	}
}

func TestBuildHierarchyOrderStableAcrossInputOrder(t *testing.T) {
	themes := []Theme{
		themeFixture("t-1", "alpha", nil),
		themeFixture("t-2", "Beta", nil),
		themeFixture("t-3", "gamma", nil),
	}
	reversed := []Theme{themes[2], themes[1], themes[0]}

	a := FlattenHierarchy(BuildHierarchy(themes))
	b := FlattenHierarchy(BuildHierarchy(reversed))
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("output order depends on input order at %d: %q vs %q", i, a[i].ID, b[i].ID)
		}
	}
}
