package errors

import (
	"fmt"
	"strings"
)

// FormatUserError returns the single-line message printed at the command
// boundary. Typed errors are rendered from their own fields so that wrapping
// context added on the way up does not leak into the user-facing line.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	var msg string

	var (
		configErr *ConfigError
		authErr   *AuthError
		deniedErr *AccessDeniedError
		rlErr     *RateLimitError
		nfErr     *NotFoundError
		dfErr     *DeviceFlowError
		aiErr     *AIError
	)

	switch {
	case As(err, &configErr):
		msg = configErr.Message
	case As(err, &authErr):
		msg = authErr.Error()
	case As(err, &deniedErr):
		msg = deniedErr.Error()
	case As(err, &rlErr):
		msg = rlErr.Error()
	case As(err, &nfErr):
		msg = nfErr.Error()
	case As(err, &dfErr):
		msg = dfErr.Error()
	case As(err, &aiErr):
		msg = formatAIError(aiErr)
	default:
		msg = err.Error()
	}

	return singleLine(msg)
}

// formatAIError adds a hint for the status codes a user can act on.
func formatAIError(err *AIError) string {
	switch err.StatusCode {
	case 401:
		return fmt.Sprintf("Anthropic rejected the API key (%s). Run \"git-sense config --anthropic-key <key>\" to update it.", err.Message)
	case 429:
		return fmt.Sprintf("Anthropic rate limit exceeded (%s). Wait a few minutes before retrying.", err.Message)
	case 500, 502, 503, 504, 529:
		return fmt.Sprintf("Anthropic server error (%s). Wait a few moments and try again.", err.Message)
	}
	return err.Error()
}

func singleLine(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}
