package spacedrep

import "github.com/cfaprep/cfaprep/internal/store"

// FromRecord converts a stored error record into review state.
func FromRecord(rec store.ErrorRecord) *ReviewState {
	return &ReviewState{
		QuestionID:    rec.QuestionID,
		BookID:        rec.BookID,
		ModuleID:      rec.ModuleID,
		ErrorCount:    rec.ErrorCount,
		IntervalDays:  rec.IntervalDays,
		NextReviewAt:  rec.NextReviewAt,
		LastErrorAt:   rec.LastErrorAt,
		LastCorrectAt: rec.LastCorrectAt,
	}
}

// Record converts review state back into its stored form.
func (rs *ReviewState) Record() *store.ErrorRecord {
	return &store.ErrorRecord{
		QuestionID:    rs.QuestionID,
		BookID:        rs.BookID,
		ModuleID:      rs.ModuleID,
		ErrorCount:    rs.ErrorCount,
		IntervalDays:  rs.IntervalDays,
		NextReviewAt:  rs.NextReviewAt,
		LastErrorAt:   rs.LastErrorAt,
		LastCorrectAt: rs.LastCorrectAt,
	}
}
