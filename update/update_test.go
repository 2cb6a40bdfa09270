package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseServer(t *testing.T, status int, body string, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIsNewer(t *testing.T) {
	cases := []struct {
		current, latest string
		want            bool
	}{
		{"1.2.0", "v1.3.0", true},
		{"v1.3.0", "1.3.0", false},
		{"1.10.0", "1.9.9", false},
		{"1.0.0-rc.1", "1.0.0", true},
		{"dev", "v9.9.9", false},
		{"1.0.0", "latest", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsNewer(tc.current, tc.latest), "%s -> %s", tc.current, tc.latest)
	}
}

func TestCheckReportsNewerRelease(t *testing.T) {
	srv := releaseServer(t, http.StatusOK, `{"tag_name": "v2.0.0", "html_url": "https://example.com/r/2"}`, 0)
	c := NewChecker("1.0.0", srv.URL, time.Second)

	info, ok := c.Check(context.Background())
	require.True(t, ok)
	assert.True(t, info.Newer)
	assert.Equal(t, Release{Tag: "v2.0.0", URL: "https://example.com/r/2"}, info.Latest)
}

func TestCheckFailuresMeanNoInformation(t *testing.T) {
	cases := map[string]*httptest.Server{
		"status":  releaseServer(t, http.StatusNotFound, `{}`, 0),
		"garbage": releaseServer(t, http.StatusOK, `<html>`, 0),
		"no tag":  releaseServer(t, http.StatusOK, `{"html_url": "x"}`, 0),
		"timeout": releaseServer(t, http.StatusOK, `{"tag_name": "v2.0.0"}`, time.Second),
	}
	for name, srv := range cases {
		t.Run(name, func(t *testing.T) {
			c := NewChecker("1.0.0", srv.URL, 50*time.Millisecond)
			_, ok := c.Check(context.Background())
			assert.False(t, ok)
		})
	}
}

func TestStartDeliversOnce(t *testing.T) {
	srv := releaseServer(t, http.StatusOK, `{"tag_name": "v1.0.0"}`, 0)
	c := NewChecker("1.0.0", srv.URL, time.Second)
	defer c.Close()

	var got []Info
	for info := range c.Start(context.Background()) {
		got = append(got, info)
	}
	require.Len(t, got, 1)
	assert.False(t, got[0].Newer)
}

func TestStartClosesWithoutValueOnFailure(t *testing.T) {
	c := NewChecker("1.0.0", "http://127.0.0.1:0/unreachable", 100*time.Millisecond)
	defer c.Close()

	select {
	case info, ok := <-c.Start(context.Background()):
		assert.False(t, ok, "unexpected info %#v", info)
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed")
	}
}
