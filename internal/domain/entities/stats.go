package entities

import "time"

// UserStats holds the persisted lifetime counters for one user.
// Correct + Wrong equals the total number of answers ever submitted.
type UserStats struct {
	UserID      string
	Correct     int
	Wrong       int
	CorrectQIDs []int  // distinct ids of correctly answered questions
	LastUpdate  string // ISO date of the last write
}

// NewUserStats returns the zero-valued record for an unknown user.
func NewUserStats(userID string) *UserStats {
	return &UserStats{UserID: userID}
}

// Total returns the number of answers ever submitted by the user.
func (s *UserStats) Total() int {
	return s.Correct + s.Wrong
}

// HasSolved reports whether the user has already answered the question
// correctly.
func (s *UserStats) HasSolved(qid int) bool {
	for _, id := range s.CorrectQIDs {
		if id == qid {
			return true
		}
	}
	return false
}

// AddCorrect increments the correct counter and records the question id,
// keeping CorrectQIDs a set.
func (s *UserStats) AddCorrect(qid int) {
	s.Correct++
	if !s.HasSolved(qid) {
		s.CorrectQIDs = append(s.CorrectQIDs, qid)
	}
	s.touch()
}

// AddWrong increments the wrong counter.
func (s *UserStats) AddWrong() {
	s.Wrong++
	s.touch()
}

func (s *UserStats) touch() {
	s.LastUpdate = time.Now().UTC().Format("2006-01-02")
}
