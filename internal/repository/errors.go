// Package repository defines data access for shows and seats.  Sentinel
// errors declared here let higher layers distinguish failure scenarios
// with errors.Is instead of inspecting driver-specific errors.
package repository

import "errors"

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// ErrShowNotFound is returned when a show lookup yields no rows.
var ErrShowNotFound = errors.New("show not found")
