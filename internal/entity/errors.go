package entity

import "errors"

// Domain errors for study sessions and reports.
var (
	ErrEmptyQueue         = errors.New("no cards available to review")
	ErrSessionFinished    = errors.New("study session already finished")
	ErrInvalidQuality     = errors.New("invalid quality rating")
	ErrInconsistentAnswer = errors.New("quality rating contradicts correctness")
	ErrSessionNotFound    = errors.New("study session not found")
	ErrInvalidLearnerID   = errors.New("invalid learner ID")
	ErrInvalidSessionID   = errors.New("invalid session ID")
	ErrInvalidFilter      = errors.New("invalid report filter")
	ErrCardNotFound       = errors.New("card not found")
)
