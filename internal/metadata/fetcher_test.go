package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body on 200", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.UserAgent()
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><title>Hi</title></html>"))
		}))
		defer server.Close()

		body, err := NewFetcher().Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><title>Hi</title></html>", string(body))
		assert.Equal(t, DefaultUserAgent, gotUA)
	})

	t.Run("non-200 is a fetch failure", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusNoContent} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			_, err := NewFetcher().Fetch(context.Background(), server.URL)
			server.Close()

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFetchFailed)
		}
	})

	t.Run("follows redirects to a 200", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("moved"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		body, err := NewFetcher().Fetch(context.Background(), server.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, "moved", string(body))
	})

	t.Run("timeout is a fetch failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		}))
		defer server.Close()

		f := NewFetcher(WithTimeout(20 * time.Millisecond))
		_, err := f.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFetchFailed)
	})

	t.Run("transport error is a fetch failure", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(WithTimeout(200 * time.Millisecond))
		_, err := f.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFetchFailed)
	})

	t.Run("truncates long bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
		}))
		defer server.Close()

		body, err := NewFetcher(WithMaxBytes(100)).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Len(t, body, 100)
	})

	t.Run("transcodes declared charset to utf-8", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			// "café" in latin-1
			_, _ = w.Write([]byte{'<', 't', 'i', 't', 'l', 'e', '>', 'c', 'a', 'f', 0xe9, '<', '/', 't', 'i', 't', 'l', 'e', '>'})
		}))
		defer server.Close()

		body, err := NewFetcher().Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "café", Extract(body).Title)
	})

	t.Run("sends custom user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.UserAgent()
		}))
		defer server.Close()

		_, err := NewFetcher(WithUserAgent("test-agent")).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "test-agent", gotUA)
	})

	t.Run("empty 200 body is a page without metadata", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
		}))
		defer server.Close()

		body, err := NewFetcher().Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Empty(t, body)
		assert.Equal(t, domain.ExtractedMetadata{}, Extract(body))
	})
}

func TestNewFetcherDefaults(t *testing.T) {
	f := NewFetcher(WithTimeout(0), WithMaxBytes(-1), WithUserAgent(""))
	assert.Equal(t, DefaultFetchTimeout, f.Timeout())
	assert.Equal(t, DefaultMaxBodyBytes, f.maxBytes)
	assert.Equal(t, DefaultUserAgent, f.userAgent)
}
