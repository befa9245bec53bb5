// Package depgraph maintains the per-project task dependency graph.
package depgraph

import (
	"sort"

	"taskflow/internal/domain"
)

// Graph is an adjacency list in both directions, keyed by task ID.
type Graph struct {
	deps       map[string][]string
	dependents map[string][]string
}

// New builds a graph from dependency edges.
func New(edges []domain.Dependency) *Graph {
	g := &Graph{
		deps:       make(map[string][]string, len(edges)),
		dependents: make(map[string][]string, len(edges)),
	}
	for _, e := range edges {
		g.add(e.TaskID, e.DependsOnID)
	}
	return g
}

func (g *Graph) add(taskID, dependsOnID string) {
	g.deps[taskID] = append(g.deps[taskID], dependsOnID)
	g.dependents[dependsOnID] = append(g.dependents[dependsOnID], taskID)
}

// HasEdge reports whether taskID directly depends on dependsOnID.
func (g *Graph) HasEdge(taskID, dependsOnID string) bool {
	for _, id := range g.deps[taskID] {
		if id == dependsOnID {
			return true
		}
	}
	return false
}

// DirectDependencies returns the immediate prerequisites of taskID.
func (g *Graph) DirectDependencies(taskID string) []string {
	return sorted(g.deps[taskID])
}

// DirectDependents returns the tasks that immediately depend on taskID.
func (g *Graph) DirectDependents(taskID string) []string {
	return sorted(g.dependents[taskID])
}

// TransitiveDependencies returns every task reachable by following
// dependency edges from taskID, excluding taskID itself.
func (g *Graph) TransitiveDependencies(taskID string) []string {
	return walk(g.deps, taskID)
}

// TransitiveDependents returns every task that reaches taskID through
// dependency edges, excluding taskID itself.
func (g *Graph) TransitiveDependents(taskID string) []string {
	return walk(g.dependents, taskID)
}

// Reaches reports whether target is a transitive dependency of from.
func (g *Graph) Reaches(from, target string) bool {
	visited := map[string]struct{}{from: {}}
	stack := append([]string(nil), g.deps[from]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		stack = append(stack, g.deps[id]...)
	}
	return false
}

// walk is an iterative traversal; each node is expanded at most once.
func walk(adj map[string][]string, start string) []string {
	visited := map[string]struct{}{start: {}}
	var out []string
	stack := append([]string(nil), adj[start]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		out = append(out, id)
		stack = append(stack, adj[id]...)
	}
	sort.Strings(out)
	return out
}

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
