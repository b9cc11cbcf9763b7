package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Upstream envelope keys. An element carrying a truthy earlyVoteKey is an
// early-voting record regardless of what else it holds.
const (
	regularVoteKey = "nvpop"
	earlyVoteKey   = "fulloutvote"
)

var (
	// ErrNoData means the upstream payload has no usable first element.
	ErrNoData = errors.New("no data found")

	// ErrMalformedPayload means the upstream body is not JSON.
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// Record is one upstream element. It is exactly one of RegularVoting or
// EarlyVoting.
type Record interface {
	isRecord()
}

// RegularVoting is a polling-place assignment ("nvpop").
type RegularVoting struct {
	ElectionDate Number `json:"eledate"`
	Area         Number `json:"earea"`
	Unit         Number `json:"eunit"`
	Description  Text   `json:"desp"`
	PersonID     Number `json:"pid"`
	Name         Text   `json:"tfname"`
	Sequence     Number `json:"seq"`
	Mark         Number `json:"mark1"`
}

// EarlyVoting is an advance-voting registration ("fulloutvote").
type EarlyVoting struct {
	Personal PersonalDetails `json:"Personal_details"`
	Request  RightsRequest   `json:"Details_of_requesting_to_exercise_rights"`

	// Raw is the group exactly as received.
	Raw json.RawMessage `json:"-"`
}

// PersonalDetails is the voter half of an early-voting record.
type PersonalDetails struct {
	PersonID  Number `json:"pid"`
	Name      Text   `json:"tfname"`
	Catchment Text   `json:"catm_desc"`
	Area      Number `json:"earea"`
	RegType   Number `json:"reg_type"`
	RegDate   Number `json:"reg_date"`
	VotedFlag Number `json:"voted_flag"`
}

// RightsRequest is the request-to-exercise-rights half of an early-voting record.
type RightsRequest struct {
	VoteCenter   Text   `json:"votecc_desc"`
	VoteLocation Text   `json:"vote_name"`
	Sequence     Number `json:"seq"`
	ElectionDate Number `json:"eledate"`
}

func (RegularVoting) isRecord() {}
func (EarlyVoting) isRecord()   {}

// RawResponse is the upstream array, element by element, undecoded.
type RawResponse []json.RawMessage

// DecodeResponse parses an upstream body. A JSON value that is not an array
// decodes to an empty response rather than an error.
func DecodeResponse(body []byte) (RawResponse, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, ok := v.([]any); !ok {
		return RawResponse{}, nil
	}
	var raw RawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return raw, nil
}

// First discriminates the first element into a Record. Later elements are
// ignored. It returns ErrNoData when the first element is missing, falsy,
// not an object, or carries neither shape.
func (r RawResponse) First() (Record, error) {
	if len(r) == 0 || !truthy(r[0]) {
		return nil, ErrNoData
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r[0], &fields); err != nil {
		return nil, ErrNoData
	}

	if group, ok := fields[earlyVoteKey]; ok && truthy(group) {
		var ev EarlyVoting
		// A group that is not an object degrades to empty fields.
		_ = json.Unmarshal(group, &ev)
		ev.Raw = append(json.RawMessage(nil), group...)
		return ev, nil
	}
	if group, ok := fields[regularVoteKey]; ok && truthy(group) {
		var rv RegularVoting
		_ = json.Unmarshal(group, &rv)
		return rv, nil
	}
	return nil, ErrNoData
}

// truthy mirrors JavaScript truthiness for a JSON value: null, false, 0 and
// "" are falsy, everything else (including {} and []) is truthy.
func truthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return false
	}
	switch string(v) {
	case "null", "false", `""`:
		return false
	}
	if v[0] == '-' || (v[0] >= '0' && v[0] <= '9') {
		f, err := strconv.ParseFloat(string(v), 64)
		return err != nil || f != 0
	}
	return true
}

// Number is a scalar rendered the way a JavaScript template literal would:
// 5, 5.0 and 5e0 all become "5", 1e1 becomes "10". Strings are kept as-is
// ("06" stays "06"); other JSON types decode to "".
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number(scalarText(b))
	return nil
}

func (n Number) String() string {
	return string(n)
}

// Text is a string field that tolerates numbers; other JSON types decode to "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text(scalarText(b))
	return nil
}

func (t Text) String() string {
	return string(t)
}

func scalarText(b []byte) string {
	v := bytes.TrimSpace(b)
	if len(v) == 0 {
		return ""
	}
	switch {
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	case v[0] == '-' || (v[0] >= '0' && v[0] <= '9'):
		return numberText(v)
	default:
		return ""
	}
}

// numberText formats a JSON number literal like JavaScript's String(n).
func numberText(v []byte) string {
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return string(v)
	}
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
