package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// descriptionSeparator splits a polling-place description into the place name
// and the address text that follows it.
const descriptionSeparator = "#"

// Administrative markers, in precedence order. When two markers could start at
// the same position the earlier entry wins; otherwise the leftmost occurrence
// in the address wins.
//
// เขต/แขวง are Bangkok district/subdistrict; อำเภอ/ตำบล are their provincial
// counterparts. An address is expected to carry only one of each pair.
var (
	DistrictMarkers    = []string{"เขต", "อำเภอ"}
	SubdistrictMarkers = []string{"แขวง", "ตำบล"}
)

// Address is the best-effort administrative breakdown of a description.
type Address struct {
	Province    string
	District    string
	Subdistrict string
}

// ParseDescription extracts province, district and subdistrict from a
// description of the form "<place># <address ...> <province>". Anything it
// cannot find is left empty.
func ParseDescription(desc string) Address {
	parts := strings.Split(desc, descriptionSeparator)
	if len(parts) < 2 {
		return Address{}
	}
	text := strings.TrimFunc(parts[1], isSpace)
	if text == "" {
		return Address{}
	}
	return Address{
		Province:    lastToken(text),
		District:    FindMarked(text, DistrictMarkers),
		Subdistrict: FindMarked(text, SubdistrictMarkers),
	}
}

// FindMarked returns the first marker occurrence in text joined with the run of
// non-space characters directly after it, e.g. "เขตปทุมวัน". A marker that is
// followed by a space or the end of text does not count.
func FindMarked(text string, markers []string) string {
	for i := 0; i < len(text); {
		rest := text[i:]
		for _, m := range markers {
			if !strings.HasPrefix(rest, m) {
				continue
			}
			if tok := leadingToken(rest[len(m):]); tok != "" {
				return m + tok
			}
		}
		_, size := utf8.DecodeRuneInString(rest)
		i += size
	}
	return ""
}

// lastToken returns the final space-delimited token of text, or "" if text is
// a single token.
func lastToken(text string) string {
	idx := strings.LastIndexFunc(text, isSpace)
	if idx < 0 {
		return ""
	}
	_, size := utf8.DecodeRuneInString(text[idx:])
	return text[idx+size:]
}

func leadingToken(s string) string {
	if end := strings.IndexFunc(s, isSpace); end >= 0 {
		return s[:end]
	}
	return s
}

// isSpace matches the whitespace class used by browser regular expressions:
// Unicode spaces plus BOM, minus NEL.
func isSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r)
}
