package model

import "time"

// Progress summarizes a user's interview history for the dashboard.
type Progress struct {
	TotalSessions       int        `json:"totalSessions"`
	CompletedInterviews int        `json:"completedInterviews"`
	AverageScore        float64    `json:"averageScore"`
	BestScore           int        `json:"bestScore"`
	Strengths           []string   `json:"strengths"`
	ImprovementAreas    []string   `json:"improvementAreas"`
	LastCompletedAt     *time.Time `json:"lastCompletedAt,omitempty"`
}

// AggregateProgress folds a user's sessions into their progress summary.
// Only completed sessions contribute scores and feedback themes. Strengths
// and improvement areas are deduplicated in first-seen order, so recurring
// themes surface once.
func AggregateProgress(sessions []Session) Progress {
	p := Progress{
		TotalSessions:    len(sessions),
		Strengths:        []string{},
		ImprovementAreas: []string{},
	}

	scoreSum := 0
	seenStrength := map[string]bool{}
	seenArea := map[string]bool{}

	for i := range sessions {
		s := &sessions[i]
		if s.Status != StatusCompleted {
			continue
		}
		p.CompletedInterviews++
		scoreSum += s.OverallScore
		if s.OverallScore > p.BestScore {
			p.BestScore = s.OverallScore
		}
		for _, str := range s.Strengths {
			if str != "" && !seenStrength[str] {
				seenStrength[str] = true
				p.Strengths = append(p.Strengths, str)
			}
		}
		for _, area := range s.ImprovementAreas {
			if area != "" && !seenArea[area] {
				seenArea[area] = true
				p.ImprovementAreas = append(p.ImprovementAreas, area)
			}
		}
		if s.CompletedAt != nil && (p.LastCompletedAt == nil || s.CompletedAt.After(*p.LastCompletedAt)) {
			p.LastCompletedAt = s.CompletedAt
		}
	}

	if p.CompletedInterviews > 0 {
		p.AverageScore = float64(scoreSum) / float64(p.CompletedInterviews)
	}
	return p
}
