package engine

import (
	"fmt"

	"github.com/openriskhq/decisionguide/internal/tree"
)

// State is the terminal or suspended condition of a traversal.
type State string

const (
	// StateAwaitingInput means the walk stopped at an unanswered choice node.
	// The caller must obtain one more answer and invoke Step again.
	StateAwaitingInput State = "awaiting_input"
	// StateDecided means the walk reached a decision branch.
	StateDecided State = "decided"
	// StateDeadEnd means the walk reached an informational text node, which
	// ends the walk without a decision.
	StateDeadEnd State = "dead_end"
)

// Result is the outcome of one traversal invocation. Path holds one entry per
// node visited, in walk order.
type Result struct {
	State        State    `json:"state"`
	Decision     string   `json:"decision,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
	Path         []string `json:"path"`
	AwaitingNode string   `json:"awaiting_node,omitempty"`
}

// Decided reports whether the traversal produced a final decision.
func (r Result) Decided() bool {
	return r.State == StateDecided
}

// InvalidOptionError reports a recorded answer that names no declared option
// on its node, e.g. a stale answer from an edited tree.
type InvalidOptionError struct {
	NodeID string
	Choice string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("answer %q is not a declared option of node %q", e.Choice, e.NodeID)
}

// Step walks the tree from nodeID, consuming answers until it reaches a
// decision, an informational dead end, or an unanswered choice node. It is a
// pure function of its inputs; invoking it twice with the same arguments
// yields the same Result. pathSoFar is copied, never mutated.
//
// On an InvalidOptionError the path accumulated so far is still returned so
// the caller can display it.
func Step(doc *tree.Document, nodeID string, answers *AnswerSet, pathSoFar []string) (Result, error) {
	path := append([]string{}, pathSoFar...)
	current := nodeID

	// The cycle detector guarantees termination; the step bound guards
	// against a tree that somehow bypassed it.
	for steps := 0; steps <= len(doc.Nodes); steps++ {
		node, ok := doc.Nodes[current]
		if !ok {
			return Result{Path: path}, fmt.Errorf("node %q not found in tree %q", current, doc.ID)
		}

		if node.Type == tree.NodeText {
			path = append(path, node.Text)
			return Result{State: StateDeadEnd, Path: path}, nil
		}

		choice, answered := answers.Get(current)
		if !answered {
			return Result{State: StateAwaitingInput, AwaitingNode: current, Path: path}, nil
		}

		branch, ok := node.Options[choice]
		if !ok {
			return Result{State: StateAwaitingInput, AwaitingNode: current, Path: path},
				&InvalidOptionError{NodeID: current, Choice: choice}
		}

		path = append(path, node.Text+" -> "+choice)

		if branch.Decision != "" {
			return Result{
				State:       StateDecided,
				Decision:    branch.Decision,
				Explanation: branch.Explanation,
				Path:        path,
			}, nil
		}
		current = branch.Next
	}

	return Result{Path: path}, fmt.Errorf("traversal exceeded %d nodes without terminating", len(doc.Nodes))
}

// Run walks the tree from its root with an empty starting path.
func Run(doc *tree.Document, answers *AnswerSet) (Result, error) {
	return Step(doc, doc.Root, answers, nil)
}

// Progress reports how many choice nodes have been answered out of the total.
func Progress(doc *tree.Document, answers *AnswerSet) (answered, total int) {
	return answers.Len(), doc.QuestionCount()
}
