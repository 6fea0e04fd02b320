package domain

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// BuildHierarchy derives the taxonomy tree from a flat, unordered theme set.
// A theme whose declared parent is absent from the set is treated as a root.
// Members of a parent cycle are promoted to roots so that no node disappears
// from the derived view. Roots and every children list are ordered by name
// using locale-aware, case-insensitive collation.
func BuildHierarchy(themes []Theme) []*ThemeWithChildren {
	nodes := make(map[string]*ThemeWithChildren, len(themes))
	for _, theme := range themes {
		nodes[theme.ID] = &ThemeWithChildren{Theme: theme, Children: []*ThemeWithChildren{}}
	}

	inCycle := cycleMembership(themes)

	roots := make([]*ThemeWithChildren, 0, len(themes))
	for _, theme := range themes {
		node := nodes[theme.ID]
		if theme.ParentThemeID == nil || inCycle[theme.ID] {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*theme.ParentThemeID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	c := newNameCollator()
	sortSiblings(c, roots)
	for _, node := range nodes {
		sortSiblings(c, node.Children)
	}
	return roots
}

// FlattenHierarchy reproduces hierarchy order as a flat list: each parent is
// immediately followed by its children, children in sorted order. Pure and
// idempotent with respect to BuildHierarchy output.
func FlattenHierarchy(tree []*ThemeWithChildren) []Theme {
	out := make([]Theme, 0, len(tree))
	var walk func(nodes []*ThemeWithChildren)
	walk = func(nodes []*ThemeWithChildren) {
		for _, node := range nodes {
			out = append(out, node.Theme)
			walk(node.Children)
		}
	}
	walk(tree)
	return out
}

// CycleMembers returns the ids of all themes participating in a parent cycle,
// in no particular order. An empty result means the parent graph is acyclic.
func CycleMembers(themes []Theme) []string {
	inCycle := cycleMembership(themes)
	out := make([]string, 0, len(inCycle))
	for id, yes := range inCycle {
		if yes {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// cycleMembership walks parent chains with Floyd-style visited tracking.
// Each chain either terminates at a root/dangling reference or re-enters a
// previously finished chain; a chain that revisits its own walk is a cycle.
func cycleMembership(themes []Theme) map[string]bool {
	parent := make(map[string]string, len(themes))
	exists := make(map[string]bool, len(themes))
	for _, theme := range themes {
		exists[theme.ID] = true
		if theme.ParentThemeID != nil {
			parent[theme.ID] = *theme.ParentThemeID
		}
	}

	const (
		unvisited  = 0
		inProgress = 1
		done       = 2
	)
	state := make(map[string]int, len(themes))
	inCycle := make(map[string]bool)

	for _, theme := range themes {
		if state[theme.ID] != unvisited {
			continue
		}
		path := []string{}
		id := theme.ID
		for {
			if !exists[id] || state[id] == done {
				break
			}
			if state[id] == inProgress {
				// id is the entry point of a cycle; everything from its
				// first occurrence on the path is a member.
				start := 0
				for i, p := range path {
					if p == id {
						start = i
						break
					}
				}
				for _, p := range path[start:] {
					inCycle[p] = true
				}
				break
			}
			state[id] = inProgress
			path = append(path, id)
			next, ok := parent[id]
			if !ok {
				break
			}
			id = next
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return inCycle
}

func newNameCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}

func sortSiblings(c *collate.Collator, nodes []*ThemeWithChildren) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return c.CompareString(nodes[i].Name, nodes[j].Name) < 0
	})
}
