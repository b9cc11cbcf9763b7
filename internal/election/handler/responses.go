package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"votecheck/internal/election/domain"
	"votecheck/internal/election/metrics"
	"votecheck/internal/election/service"
	"votecheck/internal/platform/i18n"
)

// SourceResponse is one registry's answer. On success the normalized fields
// are inlined; otherwise Error carries a localized message. RawData echoes
// the upstream body whenever one was received.
type SourceResponse struct {
	Source string `json:"source"`
	*domain.Result
	Error   string          `json:"error,omitempty"`
	RawData json.RawMessage `json:"rawData,omitempty"`
}

// ComparisonResponse describes the cross-check.
type ComparisonResponse struct {
	Status            domain.ComparisonStatus `json:"status"`
	Message           string                  `json:"message"`
	EarlyVoted        bool                    `json:"earlyVoted"`
	EarlyVotedMessage string                  `json:"earlyVotedMessage,omitempty"`
}

// CheckResponse is the body of POST /api/check.
type CheckResponse struct {
	Election   SourceResponse     `json:"election"`
	ElectionPM SourceResponse     `json:"electionPm"`
	Comparison ComparisonResponse `json:"comparison"`
}

// FromSourceResult converts a service result and picks its HTTP status.
func FromSourceResult(ctx context.Context, res service.SourceResult) (SourceResponse, int) {
	resp := SourceResponse{Source: string(res.Source), RawData: res.Raw}
	switch res.Outcome() {
	case metrics.OutcomeFound:
		resp.Result = res.Result
		return resp, http.StatusOK
	case metrics.OutcomeNoData:
		resp.Error = i18n.T(ctx, i18n.MsgNoData)
		return resp, http.StatusNotFound
	case metrics.OutcomeUnavailable:
		resp.Error = i18n.T(ctx, i18n.MsgSourceDisabled)
		return resp, http.StatusServiceUnavailable
	default:
		resp.Error = i18n.T(ctx, i18n.MsgUpstreamFailed)
		resp.RawData = nil
		return resp, http.StatusBadGateway
	}
}

// FromCheckResult converts a cross-check result.
func FromCheckResult(ctx context.Context, res service.CheckResult) CheckResponse {
	election, _ := FromSourceResult(ctx, res.Election)
	referendum, _ := FromSourceResult(ctx, res.Referendum)

	comparison := ComparisonResponse{
		Status:     res.Comparison.Status,
		Message:    i18n.T(ctx, comparisonMessage(res.Comparison.Status)),
		EarlyVoted: res.Comparison.EarlyVoted,
	}
	if comparison.EarlyVoted {
		comparison.EarlyVotedMessage = i18n.T(ctx, i18n.MsgEarlyVoted)
	}
	return CheckResponse{Election: election, ElectionPM: referendum, Comparison: comparison}
}

func comparisonMessage(status domain.ComparisonStatus) string {
	switch status {
	case domain.ComparisonMatch:
		return i18n.MsgMatch
	case domain.ComparisonMismatch:
		return i18n.MsgMismatch
	default:
		return i18n.MsgUnavailable
	}
}
