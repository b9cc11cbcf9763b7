package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"votecheck/pkg/requestcontext"
	"votecheck/pkg/testutil"
)

func TestMiddleware(t *testing.T) {
	before := time.Now()
	capture := &testutil.CaptureHandler{}
	testutil.DoRequest(Middleware(capture), httptest.NewRequest(http.MethodGet, "/", nil))

	got := requestcontext.Now(capture.Request.Context())
	assert.False(t, got.Before(before))
	assert.WithinDuration(t, time.Now(), got, time.Second)
	// Stable for the whole request.
	assert.Equal(t, got, requestcontext.Now(capture.Request.Context()))
}
