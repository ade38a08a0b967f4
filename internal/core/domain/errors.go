package domain

import "errors"

var (
	ErrOutOfRange      = errors.New("value out of range")
	ErrNoOp            = errors.New("weight is already set to that value")
	ErrDegenerateTable = errors.New("total weight would drop below 1")
	ErrEmptyTable      = errors.New("weight table is empty")

	ErrUnknownGame     = errors.New("unknown game")
	ErrUnknownLocation = errors.New("unknown location")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrNotPermitted    = errors.New("not permitted")

	// ErrNotFound is returned by repositories when no record exists for an id.
	ErrNotFound = errors.New("record not found")
)
