package redditrules

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"нижний регистр без изменений", "golang", "golang"},
		{"верхний регистр", "GoLang", "golang"},
		{"префикс r/", "r/startups", "startups"},
		{"префикс в верхнем регистре", "R/Startups", "startups"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestFetch_FormatsRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/golang/about/rules.json", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"rules":[
			{"short_name":"Be nice","description":"No personal attacks."},
			{"short_name":"On topic","description":"Posts must relate to Go."}]}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL)
	text, err := client.Fetch(context.Background(), "GoLang")
	require.NoError(t, err)
	assert.Contains(t, text, "**Rule 1: Be nice**\nNo personal attacks.")
	assert.Contains(t, text, "**Rule 2: On topic**\nPosts must relate to Go.")
}

func TestFetch_EmptyRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rules":[]}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL)
	text, err := client.Fetch(context.Background(), "tiny")
	require.NoError(t, err)
	assert.Equal(t, DefaultRulesText, text)
}

func TestFetch_StatusErrors(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		expectedErr error
	}{
		{"несуществующий сабреддит", http.StatusNotFound, ErrNotFound},
		{"приватный сабреддит", http.StatusForbidden, ErrPrivate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			client := NewClientWithBaseURL(srv.URL)
			_, err := client.Fetch(context.Background(), "whatever")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}
