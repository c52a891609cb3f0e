package model

import "time"

// SeedSegment describes one configured leg used to seed a fresh stack.
type SeedSegment struct {
	Name         string
	Description  string
	PersonalBest *int64
}

// Seed is the configured starting point for a stack.
type Seed struct {
	Segments     []SeedSegment
	PersonalBest *int64
}

// Stack builds a queued stack from the seed with fresh segment ids.
func (s Seed) Stack() Stack {
	queued := make([]QueuedSegment, 0, len(s.Segments))
	for _, seg := range s.Segments {
		queued = append(queued, NewQueuedSegment(seg.Name, seg.Description, seg.PersonalBest))
	}
	return NewStack(History{PersonalBest: CloneBest(s.PersonalBest)}, queued)
}

// HistoryConfig defines filters for the attempt history report.
type HistoryConfig struct {
	Last   int
	Window int
}

// AttemptSplit is one segment's split within a saved attempt.
type AttemptSplit struct {
	SegmentID string
	Name      string
	SplitMs   int64
}

// Attempt is the archived record of one saved cycle.
type Attempt struct {
	ID        int64
	StartedAt time.Time
	SavedAt   time.Time
	TotalMs   int64
	Splits    []AttemptSplit
}
