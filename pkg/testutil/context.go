package testutil

import (
	"net/http"

	"votecheck/pkg/requestcontext"
)

// WithRequestID sets the request ID the requestid middleware would assign.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithClientIP sets the client metadata the metadata middleware would extract.
func WithClientIP(req *http.Request, ip string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, req.UserAgent()))
}

// WithLanguage sets the negotiated response language.
func WithLanguage(req *http.Request, lang string) *http.Request {
	return req.WithContext(requestcontext.WithLanguage(req.Context(), lang))
}
