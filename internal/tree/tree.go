package tree

// NodeType distinguishes question nodes from informational screens.
type NodeType string

const (
	NodeChoice NodeType = "choice"
	NodeText   NodeType = "text"
)

// Document is one decision tree, loaded from a JSON file. A Document is built
// only through Load, which validates structure and rejects cyclic references,
// and is immutable afterwards.
type Document struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Root        string          `json:"root"`
	Nodes       map[string]Node `json:"nodes"`
	Scoring     *ScoringConfig  `json:"scoring,omitempty"`
}

// Node is a single step in a tree: a choice question with branching options,
// or an informational text screen with no outgoing edges.
type Node struct {
	Type    NodeType          `json:"type,omitempty"`
	Text    string            `json:"text"`
	Options map[string]Branch `json:"options,omitempty"`
}

// Branch is the outcome of picking one option at a choice node. Exactly one of
// Decision or Next is set: Decision terminates the walk with an outcome code,
// Next points at the node to visit.
type Branch struct {
	Next        string `json:"next,omitempty"`
	Decision    string `json:"decision,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	RiskWeight  int    `json:"risk_weight,omitempty"`
}

// ScoringConfig declares level thresholds for cumulative risk scoring.
// Thresholds map a level name to the minimum score for that level.
type ScoringConfig struct {
	Thresholds map[string]int `json:"thresholds"`
}

// Risk level names recognized in scoring thresholds, in ascending severity.
const (
	LevelLow      = "low"
	LevelMedium   = "medium"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

// DefaultThresholds returns the threshold minimums used when a tree declares
// scoring without spelling them all out.
func DefaultThresholds() map[string]int {
	return map[string]int{
		LevelLow:      0,
		LevelMedium:   30,
		LevelHigh:     60,
		LevelCritical: 85,
	}
}

// QuestionCount returns the number of choice nodes in the tree.
func (d *Document) QuestionCount() int {
	n := 0
	for _, node := range d.Nodes {
		if node.Type == NodeChoice {
			n++
		}
	}
	return n
}

// HasScoring reports whether the tree declares a scoring configuration.
func (d *Document) HasScoring() bool {
	return d.Scoring != nil
}
