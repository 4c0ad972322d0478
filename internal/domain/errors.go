package domain

import "errors"

var (
	// ErrEmptyTable is returned when an operation needs at least one trade.
	ErrEmptyTable = errors.New("trade table is empty")

	// ErrDuplicateID is returned when two trades share an ID.
	ErrDuplicateID = errors.New("duplicate trade id")

	// ErrInvalidTrade is returned when a trade fails validation.
	ErrInvalidTrade = errors.New("invalid trade")
)
