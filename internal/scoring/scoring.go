package scoring

import (
	"github.com/openriskhq/decisionguide/internal/engine"
	"github.com/openriskhq/decisionguide/internal/tree"
)

// Impact classifies the direction of one answer's score contribution.
type Impact string

const (
	ImpactIncreases Impact = "increases"
	ImpactDecreases Impact = "decreases"
	ImpactNeutral   Impact = "neutral"
)

// BreakdownEntry explains one answer's contribution to the cumulative score.
type BreakdownEntry struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	RiskWeight int    `json:"risk_weight"`
	Impact     Impact `json:"impact"`
}

// Recommendation is static guidance for a risk level.
type Recommendation struct {
	Priority   string `json:"priority"`
	Action     string `json:"action"`
	Timeline   string `json:"timeline"`
	Escalation string `json:"escalation"`
}

// Assessment is the full risk scoring result for one answer set.
type Assessment struct {
	Score          int              `json:"score"`
	Level          string           `json:"level"`
	Breakdown      []BreakdownEntry `json:"breakdown"`
	Recommendation Recommendation   `json:"recommendation"`
}

var recommendations = map[string]Recommendation{
	tree.LevelCritical: {
		Priority:   "IMMEDIATE",
		Action:     "Requires immediate remediation and management attention",
		Timeline:   "Address within 24-48 hours",
		Escalation: "Escalate to senior management",
	},
	tree.LevelHigh: {
		Priority:   "HIGH",
		Action:     "Requires prompt attention and mitigation plan",
		Timeline:   "Address within 1-2 weeks",
		Escalation: "Notify risk owner and management",
	},
	tree.LevelMedium: {
		Priority:   "MEDIUM",
		Action:     "Develop mitigation plan and monitor regularly",
		Timeline:   "Address within 1-3 months",
		Escalation: "Document and track in risk register",
	},
	tree.LevelLow: {
		Priority:   "LOW",
		Action:     "Standard monitoring and periodic review",
		Timeline:   "Review quarterly",
		Escalation: "Standard documentation",
	},
}

// Score computes the cumulative risk assessment for an answer set. It is a
// pure function and recomputes from scratch each call: answers can be edited
// via back navigation, so nothing here is incremental.
//
// Unknown nodes or options contribute zero rather than failing; partial and
// stale answer sets are expected during an interactive assessment.
func Score(doc *tree.Document, answers *engine.AnswerSet) Assessment {
	total := 0
	var breakdown []BreakdownEntry

	for _, a := range answers.All() {
		node, ok := doc.Nodes[a.NodeID]
		if !ok {
			continue
		}
		branch, ok := node.Options[a.Choice]
		if !ok {
			continue
		}
		total += branch.RiskWeight
		breakdown = append(breakdown, BreakdownEntry{
			Question:   node.Text,
			Answer:     a.Choice,
			RiskWeight: branch.RiskWeight,
			Impact:     impactOf(branch.RiskWeight),
		})
	}

	score := clamp(total)
	level := levelFor(score, thresholds(doc))

	return Assessment{
		Score:          score,
		Level:          level,
		Breakdown:      breakdown,
		Recommendation: recommendations[level],
	}
}

func thresholds(doc *tree.Document) map[string]int {
	if doc.Scoring != nil && doc.Scoring.Thresholds != nil {
		return doc.Scoring.Thresholds
	}
	return tree.DefaultThresholds()
}

// levelFor picks the highest level whose minimum the score meets, defaulting
// to low below every declared minimum.
func levelFor(score int, t map[string]int) string {
	switch {
	case score >= t[tree.LevelCritical]:
		return tree.LevelCritical
	case score >= t[tree.LevelHigh]:
		return tree.LevelHigh
	case score >= t[tree.LevelMedium]:
		return tree.LevelMedium
	default:
		return tree.LevelLow
	}
}

func impactOf(weight int) Impact {
	switch {
	case weight > 0:
		return ImpactIncreases
	case weight < 0:
		return ImpactDecreases
	default:
		return ImpactNeutral
	}
}

// clamp truncates the raw sum to the closed interval [0, 100].
func clamp(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return raw
}
