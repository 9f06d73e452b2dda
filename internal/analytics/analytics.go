package analytics

import (
	"database/sql"
	"fmt"
	"time"
)

// Stats summarizes usage of the assessment history.
type Stats struct {
	TotalAssessments    int            `json:"total_assessments"`
	TreeUsage           map[string]int `json:"tree_usage"`
	DecisionCounts      map[string]int `json:"decision_counts"`
	RecentActivityCount int            `json:"recent_activity_count"`
	DailyActivity       map[string]int `json:"daily_activity"`
	MostUsedTree        string         `json:"most_used_tree,omitempty"`
	MostCommonDecision  string         `json:"most_common_decision,omitempty"`
	FirstUse            string         `json:"first_use,omitempty"`
	LastUse             string         `json:"last_use,omitempty"`
}

// recentWindow is how far back "recent activity" looks.
const recentWindow = 7 * 24 * time.Hour

// Compute derives usage statistics from the history database as of now.
func Compute(db *sql.DB, now time.Time) (Stats, error) {
	stats := Stats{
		TreeUsage:      make(map[string]int),
		DecisionCounts: make(map[string]int),
		DailyActivity:  make(map[string]int),
	}

	if err := db.QueryRow(`SELECT COUNT(*) FROM assessments`).Scan(&stats.TotalAssessments); err != nil {
		return Stats{}, fmt.Errorf("count assessments: %w", err)
	}
	if stats.TotalAssessments == 0 {
		return stats, nil
	}

	if err := groupCount(db, `SELECT tree_id, COUNT(*) FROM assessments GROUP BY tree_id`, stats.TreeUsage); err != nil {
		return Stats{}, err
	}
	if err := groupCount(db, `SELECT decision, COUNT(*) FROM assessments GROUP BY decision`, stats.DecisionCounts); err != nil {
		return Stats{}, err
	}
	if err := groupCount(db,
		`SELECT substr(created_at, 1, 10), COUNT(*) FROM assessments GROUP BY substr(created_at, 1, 10)`,
		stats.DailyActivity); err != nil {
		return Stats{}, err
	}

	// created_at is fixed-width RFC3339, so the string comparison below is a
	// chronological one.
	cutoff := now.Add(-recentWindow).UTC().Format(time.RFC3339)
	if err := db.QueryRow(`SELECT COUNT(*) FROM assessments WHERE created_at > ?`, cutoff).Scan(&stats.RecentActivityCount); err != nil {
		return Stats{}, fmt.Errorf("count recent activity: %w", err)
	}

	if err := db.QueryRow(`SELECT MIN(created_at), MAX(created_at) FROM assessments`).Scan(&stats.FirstUse, &stats.LastUse); err != nil {
		return Stats{}, fmt.Errorf("usage range: %w", err)
	}

	stats.MostUsedTree = mostCommon(stats.TreeUsage)
	stats.MostCommonDecision = mostCommon(stats.DecisionCounts)

	return stats, nil
}

func groupCount(db *sql.DB, query string, dest map[string]int) error {
	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("group count: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan group count: %w", err)
		}
		dest[key] = n
	}
	return rows.Err()
}

// mostCommon returns the key with the highest count, breaking ties by the
// lexicographically smallest key so results are deterministic.
func mostCommon(counts map[string]int) string {
	best := ""
	bestN := 0
	for k, n := range counts {
		if n > bestN || (n == bestN && (best == "" || k < best)) {
			best, bestN = k, n
		}
	}
	return best
}
