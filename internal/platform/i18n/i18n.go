// Package i18n negotiates the response language and renders user-facing
// messages. Thai is the default; English is offered to browsers that prefer it.
package i18n

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"votecheck/pkg/requestcontext"
)

// Message keys.
const (
	MsgInvalidID      = "invalid_id"
	MsgNoData         = "no_data"
	MsgUpstreamFailed = "upstream_failed"
	MsgSourceDisabled = "source_disabled"
	MsgMatch          = "match"
	MsgMismatch       = "mismatch"
	MsgUnavailable    = "unavailable"
	MsgEarlyVoted     = "early_voted"
	MsgRateLimited    = "rate_limited"
	MsgPageTitle      = "page_title"
	MsgIDLabel        = "id_label"
	MsgSubmit         = "submit"
	MsgElection       = "election"
	MsgReferendum     = "referendum"
	MsgLoading        = "loading"
)

var supported = []language.Tag{language.Thai, language.English}

var matcher = language.NewMatcher(supported)

func init() {
	set := func(key, th, en string) {
		_ = message.SetString(language.Thai, key, th)
		_ = message.SetString(language.English, key, en)
	}
	set(MsgInvalidID, "เลขบัตรประชาชนไม่ถูกต้อง", "Invalid Thai ID")
	set(MsgNoData, "ไม่พบข้อมูลสำหรับเลขบัตรประชาชนนี้", "No data found for this Thai ID")
	set(MsgUpstreamFailed, "ไม่สามารถดึงข้อมูลจากระบบทะเบียนได้", "Failed to fetch from the registry")
	set(MsgSourceDisabled, "ยังไม่ได้ตั้งค่าแหล่งข้อมูลนี้", "This registry is not configured")
	set(MsgMatch, "✓ ตรงกัน", "✓ Match")
	set(MsgMismatch, "✗ ไม่ตรงกัน", "✗ Mismatch")
	set(MsgUnavailable, "⚠️ ไม่สามารถเปรียบเทียบได้", "⚠️ Unable to compare")
	set(MsgEarlyVoted, "ลงทะเบียนเลือกตั้งล่วงหน้าแล้ว", "Registered for early voting")
	set(MsgRateLimited, "มีการเรียกใช้งานมากเกินไป กรุณาลองใหม่ภายหลัง", "Too many requests, please try again later")
	set(MsgPageTitle, "ตรวจสอบสิทธิเลือกตั้ง", "Voter registration check")
	set(MsgIDLabel, "เลขบัตรประชาชน 13 หลัก", "13-digit Thai ID")
	set(MsgSubmit, "ตรวจสอบ", "Check")
	set(MsgElection, "การเลือกตั้ง ส.ส.", "General election")
	set(MsgReferendum, "การออกเสียงประชามติ", "Referendum")
	set(MsgLoading, "กำลังตรวจสอบ...", "Checking...")
}

// Default is the language used when nothing better matches.
func Default() language.Tag {
	return language.Thai
}

// Match picks the best supported language for an Accept-Language header value.
func Match(acceptLanguage string) language.Tag {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return Default()
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default()
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default()
	}
	return supported[idx]
}

// Middleware stores the negotiated language (from ?lang= or Accept-Language)
// in the request context and sets Content-Language on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := Match(r.Header.Get("Accept-Language"))
		if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
			tag = Match(lang)
		}
		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, r.WithContext(requestcontext.WithLanguage(r.Context(), tag.String())))
	})
}

// FromContext returns the negotiated language for ctx, or Default.
func FromContext(ctx context.Context) language.Tag {
	if lang := requestcontext.Language(ctx); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			return tag
		}
	}
	return Default()
}

// T renders the message key in the request's language.
func T(ctx context.Context, key string) string {
	return message.NewPrinter(FromContext(ctx)).Sprintf(key)
}
