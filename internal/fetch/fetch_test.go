package fetch

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerURLFromPage(t *testing.T) {
	c := NewClientWith(http.DefaultClient, "https://example.com")

	tests := []struct {
		name    string
		page    string
		want    string
		wantErr bool
	}{
		{
			name: "escaped relative path",
			page: `{"jsUrl":"\/s\/player\/abcdef01\/base.js","other":1}`,
			want: "https://example.com/s/player/abcdef01/base.js",
		},
		{
			name: "protocol relative",
			page: `"jsUrl":"//cdn.example.com/player.js"`,
			want: "https://cdn.example.com/player.js",
		},
		{
			name: "absolute",
			page: `"jsUrl":"https://cdn.example.com/player.js"`,
			want: "https://cdn.example.com/player.js",
		},
		{
			name:    "missing",
			page:    `<html>no player here</html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.PlayerURLFromPage(tt.page)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchBundleCaches(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Write([]byte("var bundle=1;"))
	}))
	defer srv.Close()

	c := NewClientWith(srv.Client(), srv.URL)
	url := srv.URL + "/s/player/deadbeef/base.js"

	b1, err := c.FetchBundle(url)
	require.NoError(t, err)
	assert.Equal(t, "var bundle=1;", b1.Body)
	assert.Equal(t, "deadbeef", b1.Version)

	b2, err := c.FetchBundle(url)
	require.NoError(t, err)
	assert.Equal(t, b1.Body, b2.Body)
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
}

func TestFetchBundleRetriesOnRateLimit(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&hits, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("var bundle=2;"))
	}))
	defer srv.Close()

	c := NewClientWith(srv.Client(), srv.URL)

	b, err := c.FetchBundle(srv.URL + "/base.js")
	require.NoError(t, err)
	assert.Equal(t, "var bundle=2;", b.Body)
	assert.Equal(t, int64(2), atomic.LoadInt64(&hits))
}

func TestFetchBundleHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClientWith(srv.Client(), srv.URL)

	_, err := c.FetchBundle(srv.URL + "/gone.js")
	require.Error(t, err)
}

func TestPlayerVersion(t *testing.T) {
	assert.Equal(t, "abcdef01", PlayerVersion("https://example.com/s/player/abcdef01/player_ias.vflset/en_US/base.js"))
	assert.Equal(t, "", PlayerVersion("https://example.com/other.js"))
}

func TestNewClientTimeout(t *testing.T) {
	c := NewClient(3 * time.Second)
	require.NotNil(t, c.http)
	assert.Equal(t, 3*time.Second, c.http.Timeout)
}
