package handler

import (
	id "votecheck/pkg/domain"
	dErrors "votecheck/pkg/domain-errors"
)

// LookupRequest is the HTTP request body for the lookup and check endpoints.
type LookupRequest struct {
	ThaiID string `json:"thaiId"`

	parsedNationalID id.NationalID
}

// Validate parses the ID. The value is taken as sent: surrounding whitespace
// makes it invalid.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *LookupRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.ThaiID == "" {
		return dErrors.New(dErrors.CodeValidation, "thaiId is required")
	}
	nationalID, err := id.ParseNationalID(r.ThaiID)
	if err != nil {
		return err
	}
	r.parsedNationalID = nationalID
	return nil
}

// ParsedNationalID returns the validated national ID.
func (r *LookupRequest) ParsedNationalID() id.NationalID {
	return r.parsedNationalID
}
