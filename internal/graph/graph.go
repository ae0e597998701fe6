// Package graph builds an in-memory view of the work-item hierarchy from
// registry entries, for tree rendering, cycle listing, and statistics.
package graph

import (
	"sort"

	"github.com/RamXX/rollup/internal/model"
)

// Graph indexes entries by id and by parent edge.
type Graph struct {
	nodes    map[string]*model.RegistryEntry
	children map[string][]string // parent id -> child ids
}

// Build constructs a hierarchy graph from a list of registry entries.
func Build(entries []*model.RegistryEntry) *Graph {
	g := &Graph{
		nodes:    make(map[string]*model.RegistryEntry, len(entries)),
		children: make(map[string][]string),
	}
	for _, entry := range entries {
		g.nodes[entry.ID] = entry
		if entry.Parent != "" {
			g.children[entry.Parent] = append(g.children[entry.Parent], entry.ID)
		}
	}
	for _, ids := range g.children {
		sort.Strings(ids)
	}
	return g
}

// Node returns the entry for id, or nil.
func (g *Graph) Node(id string) *model.RegistryEntry { return g.nodes[id] }

// Roots returns entries with no parent (or a dangling parent), sorted by id.
func (g *Graph) Roots() []*model.RegistryEntry {
	var roots []*model.RegistryEntry
	for _, entry := range g.nodes {
		if entry.Parent == "" {
			roots = append(roots, entry)
			continue
		}
		if _, ok := g.nodes[entry.Parent]; !ok {
			roots = append(roots, entry)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })
	return roots
}

// TreeNode is one item with its resolved children.
type TreeNode struct {
	Entry    *model.RegistryEntry
	Children []*TreeNode
}

// Tree builds the subtree rooted at id, or nil when id is unknown.
// A cyclic parent chain terminates at the repeated node rather than
// recursing forever.
func (g *Graph) Tree(id string) *TreeNode {
	entry, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return g.buildTree(entry, map[string]bool{id: true})
}

func (g *Graph) buildTree(entry *model.RegistryEntry, onPath map[string]bool) *TreeNode {
	node := &TreeNode{Entry: entry}
	for _, childID := range g.children[entry.ID] {
		if onPath[childID] {
			continue
		}
		onPath[childID] = true
		node.Children = append(node.Children, g.buildTree(g.nodes[childID], onPath))
		delete(onPath, childID)
	}
	return node
}

// DetectCycles finds parent chains that revisit an id, via DFS over the
// parent edges. Each cycle is reported once as the slice of ids on it.
func (g *Graph) DetectCycles() [][]string {
	visited := make(map[string]bool)
	var cycles [][]string

	for id := range g.nodes {
		if visited[id] {
			continue
		}
		var path []string
		onPath := make(map[string]int)
		cur := id
		for {
			if idx, ok := onPath[cur]; ok {
				cycle := append([]string(nil), path[idx:]...)
				cycle = append(cycle, cur)
				cycles = append(cycles, cycle)
				break
			}
			if visited[cur] {
				break
			}
			visited[cur] = true
			onPath[cur] = len(path)
			path = append(path, cur)

			entry, ok := g.nodes[cur]
			if !ok || entry.Parent == "" {
				break
			}
			cur = entry.Parent
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// Stats aggregates counts across the hierarchy.
type Stats struct {
	Total      int
	Planned    int
	InProgress int
	Completed  int
	Blocked    int
	ByType     map[string]int
}

func (g *Graph) Stats() Stats {
	s := Stats{ByType: make(map[string]int)}
	for _, entry := range g.nodes {
		s.Total++
		switch entry.Status {
		case model.StatusPlanned:
			s.Planned++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusCompleted:
			s.Completed++
		case model.StatusBlocked:
			s.Blocked++
		}
		s.ByType[string(entry.Type)]++
	}
	return s
}
