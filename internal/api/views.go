package api

import (
	"sort"

	"github.com/openriskhq/decisionguide/internal/engine"
	"github.com/openriskhq/decisionguide/internal/scoring"
	"github.com/openriskhq/decisionguide/internal/tree"
)

// questionView is the pending question presented to the caller.
type questionView struct {
	NodeID  string   `json:"node_id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// progressView reports answered choice nodes against the tree total.
type progressView struct {
	Answered int     `json:"answered"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// evaluation is the wire form of one traversal outcome plus its risk view.
type evaluation struct {
	State       engine.State        `json:"state"`
	Decision    string              `json:"decision,omitempty"`
	Explanation string              `json:"explanation,omitempty"`
	Path        []string            `json:"path"`
	Question    *questionView       `json:"question,omitempty"`
	Progress    progressView        `json:"progress"`
	Risk        *scoring.Assessment `json:"risk,omitempty"`
}

// evaluate runs a full traversal from the root and assembles the wire view.
func (s *Server) evaluate(doc *tree.Document, answers *engine.AnswerSet) (evaluation, error) {
	result, err := engine.Run(doc, answers)
	if err != nil {
		return evaluation{Path: result.Path}, err
	}

	ev := evaluation{
		State:       result.State,
		Decision:    result.Decision,
		Explanation: result.Explanation,
		Path:        result.Path,
		Progress:    progressFor(doc, answers),
	}
	if result.State == engine.StateAwaitingInput {
		ev.Question = questionFor(doc, result.AwaitingNode)
	}
	if doc.HasScoring() && s.cfg.EnableRiskScoring && answers.Len() > 0 {
		risk := scoring.Score(doc, answers)
		ev.Risk = &risk
	}
	return ev, nil
}

func questionFor(doc *tree.Document, nodeID string) *questionView {
	node, ok := doc.Nodes[nodeID]
	if !ok {
		return nil
	}
	options := make([]string, 0, len(node.Options))
	for label := range node.Options {
		options = append(options, label)
	}
	sort.Strings(options)
	return &questionView{NodeID: nodeID, Text: node.Text, Options: options}
}

func progressFor(doc *tree.Document, answers *engine.AnswerSet) progressView {
	answered, total := engine.Progress(doc, answers)
	pv := progressView{Answered: answered, Total: total}
	if total > 0 {
		pv.Percent = float64(answered) / float64(total) * 100
	}
	return pv
}
