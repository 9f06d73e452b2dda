package tree

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Load parses a raw JSON tree document, normalizes legacy leniencies, and runs
// structural validation and cycle detection. It is the only way to obtain a
// Document, so every Document in the process has passed both checks.
func Load(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tree document: %w", err)
	}

	normalize(&doc)

	if err := Validate(&doc); err != nil {
		return nil, err
	}
	if err := DetectCycle(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// normalize applies legacy defaults: nodes without a type are choice nodes,
// and declared scoring fills in any missing threshold levels.
func normalize(doc *Document) {
	for id, node := range doc.Nodes {
		if node.Type == "" {
			node.Type = NodeChoice
			doc.Nodes[id] = node
		}
	}
	if doc.Scoring != nil {
		defaults := DefaultThresholds()
		if doc.Scoring.Thresholds == nil {
			doc.Scoring.Thresholds = defaults
			return
		}
		for level, min := range defaults {
			if _, ok := doc.Scoring.Thresholds[level]; !ok {
				doc.Scoring.Thresholds[level] = min
			}
		}
	}
}

// Version returns a short content hash of the document, stable across loads
// of the same tree and different whenever any field changes.
func Version(doc *Document) string {
	canonical, err := json.Marshal(doc)
	if err != nil {
		return "unknown"
	}
	h := sha256.Sum256(canonical)
	return fmt.Sprintf("%x", h[:])[:8]
}
