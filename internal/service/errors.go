package service

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInsufficientData = errors.New("not enough buckets for a trend")
)
