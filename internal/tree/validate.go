package tree

import (
	"fmt"
	"sort"
)

// ErrorCode identifies the kind of structural problem found in a document.
type ErrorCode string

const (
	ErrMissingField          ErrorCode = "missing_field"
	ErrInvalidRoot           ErrorCode = "invalid_root"
	ErrInvalidNodeType       ErrorCode = "invalid_node_type"
	ErrMissingOptions        ErrorCode = "missing_options"
	ErrMissingDecisionOrNext ErrorCode = "missing_decision_or_next"
	ErrDanglingReference     ErrorCode = "dangling_reference"
	ErrInvalidThresholds     ErrorCode = "invalid_thresholds"
)

// ValidationError reports a structural problem in a tree document. The
// offending tree is rejected wholesale; there is no partial loading.
type ValidationError struct {
	Code   ErrorCode
	NodeID string
	Option string
	Detail string
}

func (e *ValidationError) Error() string {
	switch {
	case e.NodeID != "" && e.Option != "":
		return fmt.Sprintf("%s: option %q in node %q: %s", e.Code, e.Option, e.NodeID, e.Detail)
	case e.NodeID != "":
		return fmt.Sprintf("%s: node %q: %s", e.Code, e.NodeID, e.Detail)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
}

// Validate checks a document for required fields, referential integrity, and
// option completeness. Pure inspection; it must pass before any traversal or
// cycle check runs.
func Validate(doc *Document) error {
	if doc.ID == "" {
		return &ValidationError{Code: ErrMissingField, Detail: "id is required"}
	}
	if doc.Root == "" {
		return &ValidationError{Code: ErrMissingField, Detail: "root is required"}
	}
	if doc.Nodes == nil {
		return &ValidationError{Code: ErrMissingField, Detail: "nodes is required"}
	}
	if _, ok := doc.Nodes[doc.Root]; !ok {
		return &ValidationError{Code: ErrInvalidRoot, Detail: fmt.Sprintf("root node %q not found in nodes", doc.Root)}
	}

	for _, nodeID := range sortedKeys(doc.Nodes) {
		node := doc.Nodes[nodeID]

		// Legacy documents omit the type; loaders normalize it to choice.
		typ := node.Type
		if typ == "" {
			typ = NodeChoice
		}

		switch typ {
		case NodeChoice:
			if len(node.Options) == 0 {
				return &ValidationError{Code: ErrMissingOptions, NodeID: nodeID, Detail: "choice node has no options"}
			}
			for _, label := range sortedKeys(node.Options) {
				branch := node.Options[label]
				if branch.Decision == "" && branch.Next == "" {
					return &ValidationError{
						Code: ErrMissingDecisionOrNext, NodeID: nodeID, Option: label,
						Detail: "option must have exactly one of decision or next",
					}
				}
				if branch.Decision != "" && branch.Next != "" {
					return &ValidationError{
						Code: ErrMissingDecisionOrNext, NodeID: nodeID, Option: label,
						Detail: "option has both decision and next; exactly one is allowed",
					}
				}
				if branch.Next != "" {
					if _, ok := doc.Nodes[branch.Next]; !ok {
						return &ValidationError{
							Code: ErrDanglingReference, NodeID: nodeID, Option: label,
							Detail: fmt.Sprintf("references non-existent node %q", branch.Next),
						}
					}
				}
			}
		case NodeText:
			// Informational leaf; no outgoing edges to check.
		default:
			return &ValidationError{
				Code: ErrInvalidNodeType, NodeID: nodeID,
				Detail: fmt.Sprintf("unknown node type %q", node.Type),
			}
		}
	}

	if doc.Scoring != nil {
		if err := validateThresholds(doc.Scoring.Thresholds); err != nil {
			return err
		}
	}

	return nil
}

// validateThresholds enforces low <= medium <= high <= critical.
func validateThresholds(t map[string]int) error {
	order := []string{LevelLow, LevelMedium, LevelHigh, LevelCritical}
	prev := t[order[0]]
	for _, level := range order[1:] {
		if t[level] < prev {
			return &ValidationError{
				Code:   ErrInvalidThresholds,
				Detail: fmt.Sprintf("threshold for %q (%d) is below the previous level (%d)", level, t[level], prev),
			}
		}
		prev = t[level]
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
