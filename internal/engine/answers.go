package engine

import "encoding/json"

// Answer records the option label chosen at one node.
type Answer struct {
	NodeID string `json:"node_id"`
	Choice string `json:"choice"`
}

// AnswerSet collects answers in the order they were given. Insertion order
// matters: the risk score breakdown mirrors it. An AnswerSet is owned by a
// single assessment session and is never shared across sessions.
type AnswerSet struct {
	answers []Answer
}

// NewAnswerSet builds an AnswerSet from answers in the given order.
func NewAnswerSet(answers ...Answer) *AnswerSet {
	s := &AnswerSet{}
	for _, a := range answers {
		s.Set(a.NodeID, a.Choice)
	}
	return s
}

// Get returns the recorded choice for a node.
func (s *AnswerSet) Get(nodeID string) (string, bool) {
	for _, a := range s.answers {
		if a.NodeID == nodeID {
			return a.Choice, true
		}
	}
	return "", false
}

// Set records a choice for a node. Re-answering an already-answered node
// replaces the choice in place and keeps its original position.
func (s *AnswerSet) Set(nodeID, choice string) {
	for i, a := range s.answers {
		if a.NodeID == nodeID {
			s.answers[i].Choice = choice
			return
		}
	}
	s.answers = append(s.answers, Answer{NodeID: nodeID, Choice: choice})
}

// Remove deletes the answer for a node, if present.
func (s *AnswerSet) Remove(nodeID string) {
	for i, a := range s.answers {
		if a.NodeID == nodeID {
			s.answers = append(s.answers[:i], s.answers[i+1:]...)
			return
		}
	}
}

// Len returns the number of recorded answers.
func (s *AnswerSet) Len() int {
	return len(s.answers)
}

// All returns a copy of the answers in insertion order.
func (s *AnswerSet) All() []Answer {
	out := make([]Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

// Clear removes every answer.
func (s *AnswerSet) Clear() {
	s.answers = nil
}

// Clone returns an independent copy.
func (s *AnswerSet) Clone() *AnswerSet {
	return &AnswerSet{answers: s.All()}
}

// MarshalJSON encodes the set as an ordered array of answers.
func (s *AnswerSet) MarshalJSON() ([]byte, error) {
	if s.answers == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.answers)
}

// UnmarshalJSON decodes an ordered array of answers.
func (s *AnswerSet) UnmarshalJSON(data []byte) error {
	var answers []Answer
	if err := json.Unmarshal(data, &answers); err != nil {
		return err
	}
	s.answers = nil
	for _, a := range answers {
		s.Set(a.NodeID, a.Choice)
	}
	return nil
}
