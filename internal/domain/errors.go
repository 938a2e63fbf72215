package domain

import "errors"

var (
	// ErrPlaceNotFound is returned when no place exists for an identifier.
	ErrPlaceNotFound = errors.New("place not found")

	// ErrInvalidPlace is returned when place input fails service-level checks.
	ErrInvalidPlace = errors.New("invalid place")

	// ErrUnsupportedImage is returned when an upload is not an accepted image type.
	ErrUnsupportedImage = errors.New("unsupported image format")
)
