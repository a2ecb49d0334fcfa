package github

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	gh "github.com/google/go-github/v68/github"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

// User-facing messages for mapped API failures.
const (
	msgNotAuthenticated = "Not authenticated with GitHub. Run \"git-sense auth\" first."
	msgAuthFailed       = "GitHub authentication failed. Run \"git-sense auth\" to re-authenticate."
	msgRepoNotFound     = "Repository not found. Check that you have access to this repository."
)

// mapGitHubError translates a go-github failure into a domain error.
// Errors that carry no HTTP status are returned unmodified.
func mapGitHubError(resp *gh.Response, err error) error {
	if err == nil {
		return nil
	}

	status := 0
	var header http.Header
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
		header = resp.Header
	}

	var errResp *gh.ErrorResponse
	if status == 0 && errors.As(err, &errResp) && errResp.Response != nil {
		status = errResp.Response.StatusCode
		header = errResp.Response.Header
	}

	if status == 0 {
		return err
	}

	return mapStatus(status, errorMessage(err), header, err)
}

// mapStatus applies the status table to an already extracted message.
func mapStatus(status int, message string, header http.Header, cause error) error {
	switch status {
	case http.StatusUnauthorized:
		return &gserrors.AuthError{Message: msgAuthFailed, Cause: cause}
	case http.StatusForbidden:
		if strings.Contains(message, "rate limit") {
			return &gserrors.RateLimitError{Reset: parseReset(header), Cause: cause}
		}
		return &gserrors.AccessDeniedError{Message: message, Cause: cause}
	case http.StatusNotFound:
		return gserrors.NewNotFoundError(msgRepoNotFound, cause)
	default:
		return cause
	}
}

// errorMessage extracts GitHub's own message from the typed go-github errors.
func errorMessage(err error) string {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return rateErr.Message
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return abuseErr.Message
	}
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp.Message
	}
	return err.Error()
}

// parseReset reads X-RateLimit-Reset (unix seconds). Zero when absent.
func parseReset(header http.Header) time.Time {
	if header == nil {
		return time.Time{}
	}
	v := header.Get("X-Ratelimit-Reset")
	if v == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
