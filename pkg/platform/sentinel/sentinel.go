package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Clients and infrastructure layers
// return these (optionally wrapped) so services and handlers can translate them.
//
//   - ErrNotFound: the addressed resource does not exist
//   - ErrUnavailable: the dependency is not configured or temporarily unusable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
