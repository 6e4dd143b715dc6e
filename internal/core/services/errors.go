package services

import "errors"

var (
	ErrNilConfig           = errors.New("booking service config is nil")
	ErrNilStore            = errors.New("booking store is required")
	ErrNilCatalog          = errors.New("catalog repository is required")
	ErrNilClock            = errors.New("clock is required")
	ErrNilLocation         = errors.New("business location is required")
	ErrInvalidHoldDuration = errors.New("hold duration must be positive")
	ErrNilExpirer          = errors.New("expirer is required")
)
