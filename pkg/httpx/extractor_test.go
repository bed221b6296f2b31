package httpx_test

import (
	"net/http"
	"testing"

	"github.com/archsystems/authgate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationHeaderCanonical(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer aaa.bbb.ccc")

	require.Equal(t, "Bearer aaa.bbb.ccc", httpx.AuthorizationHeader(h))
}

func TestAuthorizationHeaderProxyFallback(t *testing.T) {
	h := http.Header{}
	h["HTTP_AUTHORIZATION"] = []string{"Bearer aaa.bbb.ccc"}

	require.Equal(t, "Bearer aaa.bbb.ccc", httpx.AuthorizationHeader(h))
}

func TestAuthorizationHeaderCaseInsensitiveScan(t *testing.T) {
	h := http.Header{}
	h["http_authorization"] = []string{"Bearer aaa.bbb.ccc"}

	require.Equal(t, "Bearer aaa.bbb.ccc", httpx.AuthorizationHeader(h))
}

func TestAuthorizationHeaderCanonicalWins(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer canonical.value.x")
	h["HTTP_AUTHORIZATION"] = []string{"Bearer fallback.value.x"}

	require.Equal(t, "Bearer canonical.value.x", httpx.AuthorizationHeader(h))
}

func TestAuthorizationHeaderTrimsWhitespace(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "  Bearer aaa.bbb.ccc  ")

	require.Equal(t, "Bearer aaa.bbb.ccc", httpx.AuthorizationHeader(h))
}

func TestAuthorizationHeaderAbsent(t *testing.T) {
	require.Equal(t, "", httpx.AuthorizationHeader(http.Header{}))
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"well formed", "Bearer aaa.bbb.ccc", "aaa.bbb.ccc"},
		{"extra spaces after scheme", "Bearer   aaa.bbb.ccc", "aaa.bbb.ccc"},
		{"empty signature segment", "Bearer aaa.bbb.", "aaa.bbb."},
		{"base64url alphabet", "Bearer a-b_c=.d-e_f=.g-h_i=", "a-b_c=.d-e_f=.g-h_i="},
		{"empty", "", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"lowercase scheme", "bearer aaa.bbb.ccc", ""},
		{"no token", "Bearer", ""},
		{"two segments", "Bearer aaa.bbb", ""},
		{"four segments", "Bearer aaa.bbb.ccc.ddd", ""},
		{"invalid characters", "Bearer aaa.b!b.ccc", ""},
		{"trailing garbage", "Bearer aaa.bbb.ccc extra", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, httpx.BearerToken(tc.raw))
		})
	}
}
