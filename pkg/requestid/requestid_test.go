package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/pkg/requestid"
)

func serve(t *testing.T, header string) (ctxID, respID string) {
	t.Helper()

	handler := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = requestid.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/entitlements", nil)
	if header != "" {
		req.Header.Set(requestid.Header, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	return ctxID, rec.Header().Get(requestid.Header)
}

func TestMiddleware_KeepsValidID(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"abc123", "req_42", "ABC-123_xyz", "550e8400-e29b-41d4-a716-446655440000"} {
		t.Run(id, func(t *testing.T) {
			t.Parallel()
			ctxID, respID := serve(t, id)
			assert.Equal(t, id, ctxID)
			assert.Equal(t, id, respID)
		})
	}
}

func TestMiddleware_ReplacesInvalidID(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing":    "",
		"spaces":     "req 42",
		"slashes":    "req/42",
		"markup":     "<script>alert(1)</script>",
		"too long":   strings.Repeat("a", 129),
		"at and pct": "req@42%",
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctxID, respID := serve(t, id)
			assert.Equal(t, ctxID, respID)
			assert.NotEqual(t, id, ctxID)
			_, err := uuid.Parse(ctxID)
			assert.NoError(t, err)
		})
	}
}

func TestFromContextOrNew(t *testing.T) {
	t.Parallel()

	ctx := requestid.WithContext(context.Background(), "req_7")
	assert.Equal(t, "req_7", requestid.FromContextOrNew(ctx))

	a := requestid.FromContextOrNew(context.Background())
	b := requestid.FromContextOrNew(context.Background())
	assert.NotEqual(t, a, b)
	assert.Empty(t, requestid.FromContext(context.Background()))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := requestid.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	attr, ok := extract(requestid.WithContext(context.Background(), "req_7"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "req_7", attr.Value.String())
}
