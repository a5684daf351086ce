package repository

import "errors"

var (
	ErrReportNotFound     = errors.New("report not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrContentNotFound    = errors.New("content not found")
	ErrEvaluationNotFound = errors.New("evaluation not found")
)
