package domain

import "encoding/json"

// Display label prefixes. The region label names the electoral area, the
// polling-station label names the polling unit (regular) or the queue number
// assigned to an early-voting request.
const (
	RegionPrefix        = "เขต "
	PollingUnitPrefix   = "หน่วยที่ "
	EarlySequencePrefix = "ลำดับที่ "
)

// Result is the normalized view of either upstream shape. String fields are
// empty, never missing, when they cannot be extracted.
type Result struct {
	Region         string          `json:"region"`
	PollingStation string          `json:"pollingStation"`
	Location       string          `json:"location"`
	Province       string          `json:"province"`
	District       string          `json:"district"`
	Subdistrict    string          `json:"subdistrict"`
	HasEarlyVoted  bool            `json:"hasEarlyVoted"`
	EarlyVoteInfo  json.RawMessage `json:"earlyVoteInfo,omitempty"`
}

// Normalize maps the first element of an upstream response to a Result.
// ErrNoData is the only error; every other irregularity degrades to empty
// fields.
func Normalize(raw RawResponse) (Result, error) {
	rec, err := raw.First()
	if err != nil {
		return Result{}, err
	}
	return NormalizeRecord(rec), nil
}

// NormalizeRecord maps a discriminated record to a Result.
func NormalizeRecord(rec Record) Result {
	switch r := rec.(type) {
	case EarlyVoting:
		return normalizeEarly(r)
	case *EarlyVoting:
		return normalizeEarly(*r)
	case RegularVoting:
		return normalizeRegular(r)
	case *RegularVoting:
		return normalizeRegular(*r)
	default:
		return Result{}
	}
}

func normalizeEarly(ev EarlyVoting) Result {
	return Result{
		Region:         label(RegionPrefix, ev.Personal.Area),
		PollingStation: label(EarlySequencePrefix, ev.Request.Sequence),
		Location:       ev.Request.VoteLocation.String(),
		Province:       ev.Request.VoteCenter.String(),
		HasEarlyVoted:  true,
		EarlyVoteInfo:  ev.Raw,
	}
}

func normalizeRegular(rv RegularVoting) Result {
	addr := ParseDescription(rv.Description.String())
	return Result{
		Region:         label(RegionPrefix, rv.Area),
		PollingStation: label(PollingUnitPrefix, rv.Unit),
		Location:       rv.Description.String(),
		Province:       addr.Province,
		District:       addr.District,
		Subdistrict:    addr.Subdistrict,
	}
}

func label(prefix string, n Number) string {
	if n == "" {
		return ""
	}
	return prefix + n.String()
}
