package tree

import (
	"fmt"
	"strings"
)

// CycleError reports a circular node reference. Cycle holds the node IDs from
// the first occurrence of the repeated node back to itself, in walk order.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular reference detected: %s", strings.Join(e.Cycle, " -> "))
}

// DetectCycle verifies the node graph is acyclic from the declared root.
// Reconvergence across branches (a DAG) is allowed; only a back-edge onto the
// active root-to-current path is a cycle. Nodes whose subtree has been fully
// explored are skipped on later visits.
func DetectCycle(doc *Document) error {
	visited := make(map[string]bool)
	onPath := make(map[string]bool)
	var stack []string

	var walk func(id string) error
	walk = func(id string) error {
		if onPath[id] {
			first := 0
			for i, n := range stack {
				if n == id {
					first = i
					break
				}
			}
			cycle := append(append([]string{}, stack[first:]...), id)
			return &CycleError{Cycle: cycle}
		}
		if visited[id] {
			return nil
		}
		node, ok := doc.Nodes[id]
		if !ok {
			// The structural validator catches this first, but the walk must
			// not assume it ran.
			return &ValidationError{
				Code: ErrDanglingReference, NodeID: id,
				Detail: "node not found during cycle walk",
			}
		}

		onPath[id] = true
		stack = append(stack, id)

		if node.Type == NodeChoice || node.Type == "" {
			for _, label := range sortedKeys(node.Options) {
				if next := node.Options[label].Next; next != "" {
					if err := walk(next); err != nil {
						return err
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		delete(onPath, id)
		visited[id] = true
		return nil
	}

	return walk(doc.Root)
}
