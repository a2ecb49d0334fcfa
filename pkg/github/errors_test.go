package github

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	gh "github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

func TestMapGitHubError_Nil(t *testing.T) {
	assert.NoError(t, mapGitHubError(nil, nil))
}

func TestMapGitHubError_NoStatus(t *testing.T) {
	orig := errors.New("dial tcp: connection refused")
	assert.Same(t, orig, mapGitHubError(nil, orig))
}

func TestMapGitHubError_StatusFromErrorResponse(t *testing.T) {
	header := http.Header{}
	header.Set("X-RateLimit-Reset", "1700000000")

	ghErr := &gh.ErrorResponse{
		Response: &http.Response{
			StatusCode: http.StatusForbidden,
			Header:     header,
			Request:    &http.Request{Method: http.MethodGet, URL: &url.URL{Path: "/repos/octo/hello/commits"}},
		},
		Message: "API rate limit exceeded for user ID 1.",
	}

	err := mapGitHubError(nil, ghErr)

	var rl *gserrors.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, time.Unix(1700000000, 0), rl.Reset)
	assert.Contains(t, err.Error(), "Resets at "+gserrors.FormatResetTime(time.Unix(1700000000, 0)))
	assert.ErrorIs(t, err, ghErr)
}

func TestMapStatus(t *testing.T) {
	cause := errors.New("upstream")

	tests := []struct {
		name    string
		status  int
		message string
		want    string
	}{
		{"401", http.StatusUnauthorized, "Bad credentials", msgAuthFailed},
		{"403 rate limit", http.StatusForbidden, "You have exceeded a secondary rate limit", "GitHub API rate limit reached. Try again later."},
		{"403 case sensitive", http.StatusForbidden, "Rate Limit", "GitHub API access denied: Rate Limit"},
		{"403 other", http.StatusForbidden, "Must have admin rights", "GitHub API access denied: Must have admin rights"},
		{"404", http.StatusNotFound, "Not Found", msgRepoNotFound},
		{"422 unchanged", http.StatusUnprocessableEntity, "Validation Failed", "upstream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapStatus(tt.status, tt.message, nil, cause)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestParseReset(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"absent", "", time.Time{}},
		{"garbage", "soon", time.Time{}},
		{"unix seconds", "1700000000", time.Unix(1700000000, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("X-RateLimit-Reset", tt.value)
			}
			assert.Equal(t, tt.want, parseReset(h))
		})
	}

	assert.True(t, parseReset(nil).IsZero())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "limited", errorMessage(&gh.RateLimitError{Message: "limited"}))
	assert.Equal(t, "abuse", errorMessage(&gh.AbuseRateLimitError{Message: "abuse"}))
	assert.Equal(t, "resp", errorMessage(&gh.ErrorResponse{Message: "resp"}))
	assert.Equal(t, "plain", errorMessage(errors.New("plain")))
}
