package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"votecheck/pkg/requestcontext"
)

func TestMatch(t *testing.T) {
	assert.Equal(t, language.Thai, Match(""))
	assert.Equal(t, language.Thai, Match("th-TH,th;q=0.9"))
	assert.Equal(t, language.English, Match("en-US,en;q=0.9,th;q=0.5"))
	assert.Equal(t, language.Thai, Match("fr-FR"))
	assert.Equal(t, language.Thai, Match(";;;"))
}

func TestT(t *testing.T) {
	th := requestcontext.WithLanguage(context.Background(), "th")
	en := requestcontext.WithLanguage(context.Background(), "en")

	assert.Equal(t, "✓ ตรงกัน", T(th, MsgMatch))
	assert.Equal(t, "✓ Match", T(en, MsgMatch))
	assert.Equal(t, "Invalid Thai ID", T(en, MsgInvalidID))
	assert.Equal(t, "เลขบัตรประชาชนไม่ถูกต้อง", T(context.Background(), MsgInvalidID))
}

func TestMiddleware(t *testing.T) {
	var got string
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), MsgMismatch)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "✗ Mismatch", got)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))

	req = httptest.NewRequest(http.MethodGet, "/?lang=th", nil)
	req.Header.Set("Accept-Language", "en")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "✗ ไม่ตรงกัน", got)
}
