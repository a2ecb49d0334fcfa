package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cli/oauth"
	"github.com/cli/oauth/api"
	"github.com/cli/oauth/device"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

const (
	// DefaultGitHubHost is the default GitHub host.
	DefaultGitHubHost = "https://github.com"

	// DefaultScopes are the OAuth scopes required to read private repositories.
	DefaultScopes = "repo"

	// slowDownStep is added to the poll interval on every slow_down response.
	slowDownStep = 5 * time.Second

	defaultPollInterval = 5 * time.Second
	defaultCodeLifetime = 15 * time.Minute

	grantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// Device flow failure messages.
const (
	msgCodeExpired  = "The device code has expired. Please try again."
	msgAccessDenied = "Authorization was denied. Please try again and authorize access."
	msgAuthTimeout  = "Authorization timed out. Please try again."
)

// OAuthConfig holds OAuth configuration for device flow authentication.
type OAuthConfig struct {
	ClientID string   // OAuth app client ID (required for device flow)
	Scopes   []string // OAuth scopes to request
	HostURL  string   // GitHub host URL (default: github.com)
}

// DeviceCode is what the user needs to authorize git-sense in a browser.
type DeviceCode struct {
	UserCode        string
	VerificationURI string
	ExpiresIn       time.Duration
	Interval        time.Duration

	deviceCode string
}

// DeviceFlow performs the OAuth device authorization grant.
//
// Flow:
//  1. Request a device code from GitHub
//  2. Display the code and verification URL through DisplayCode
//  3. Poll the token endpoint every interval until a terminal response
//  4. Return the access token
type DeviceFlow struct {
	clientID      string
	scopes        []string
	deviceCodeURL string
	tokenURL      string

	httpClient  *http.Client
	displayCode func(code *DeviceCode) error
	logger      *slog.Logger
	verbose     bool

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// DeviceFlowOption is a functional option for configuring DeviceFlow.
type DeviceFlowOption func(*DeviceFlow)

// WithHTTPClient sets the HTTP client used for both endpoints.
func WithHTTPClient(client *http.Client) DeviceFlowOption {
	return func(f *DeviceFlow) {
		f.httpClient = client
	}
}

// WithDisplayCode sets the callback that shows the user code and URL.
func WithDisplayCode(fn func(code *DeviceCode) error) DeviceFlowOption {
	return func(f *DeviceFlow) {
		f.displayCode = fn
	}
}

// WithFlowLogger sets a logger and enables debug logging of poll attempts.
func WithFlowLogger(logger *slog.Logger) DeviceFlowOption {
	return func(f *DeviceFlow) {
		f.logger = logger
		f.verbose = true
	}
}

// WithClock replaces the wall clock and the sleep between polls.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) DeviceFlowOption {
	return func(f *DeviceFlow) {
		f.now = now
		f.sleep = sleep
	}
}

// NewDeviceFlow prepares a device flow against cfg.HostURL.
func NewDeviceFlow(cfg OAuthConfig, opts ...DeviceFlowOption) (*DeviceFlow, error) {
	if cfg.ClientID == "" {
		return nil, gserrors.NewConfigError("github.client_id", "client_id is required for OAuth device flow")
	}

	hostURL := cfg.HostURL
	if hostURL == "" {
		hostURL = DefaultGitHubHost
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{DefaultScopes}
	}

	host, err := oauth.NewGitHubHost(hostURL)
	if err != nil {
		return nil, gserrors.NewConfigErrorWithCause("github.host", "invalid GitHub host URL", err)
	}

	f := &DeviceFlow{
		clientID:      cfg.ClientID,
		scopes:        scopes,
		deviceCodeURL: host.DeviceCodeURL,
		tokenURL:      host.TokenURL,
		httpClient:    http.DefaultClient,
		logger:        slog.Default(),
		now:           time.Now,
		sleep:         sleepContext,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Run requests a device code, displays it and polls until GitHub returns a
// token or a terminal error.
func (f *DeviceFlow) Run(ctx context.Context) (string, error) {
	code, err := f.RequestCode(ctx)
	if err != nil {
		return "", err
	}

	if f.displayCode != nil {
		if err := f.displayCode(code); err != nil {
			return "", err
		}
	}

	return f.Poll(ctx, code)
}

// RequestCode asks GitHub for a new device and user code.
func (f *DeviceFlow) RequestCode(ctx context.Context) (*DeviceCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.logDebug("requesting device code", "url", f.deviceCodeURL, "scopes", f.scopes)

	rec := &statusRecorder{client: f.httpClient}
	resp, err := device.RequestCode(rec, f.deviceCodeURL, f.clientID, f.scopes)
	if err != nil {
		reason := err.Error()
		if rec.status != 0 && rec.status != http.StatusOK {
			reason = fmt.Sprintf("%d %s", rec.status, http.StatusText(rec.status))
		}
		return nil, gserrors.NewDeviceFlowErrorWithCause(gserrors.DeviceFlowProvider,
			"Failed to start device flow: "+reason, err)
	}

	code := &DeviceCode{
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURI,
		ExpiresIn:       time.Duration(resp.ExpiresIn) * time.Second,
		Interval:        time.Duration(resp.Interval) * time.Second,
		deviceCode:      resp.DeviceCode,
	}
	if code.Interval <= 0 {
		code.Interval = defaultPollInterval
	}
	if code.ExpiresIn <= 0 {
		code.ExpiresIn = defaultCodeLifetime
	}

	return code, nil
}

// Poll waits code.Interval before every attempt and stops on the first
// terminal response. It gives up once code.ExpiresIn has elapsed.
func (f *DeviceFlow) Poll(ctx context.Context, code *DeviceCode) (string, error) {
	start := f.now()
	interval := code.Interval

	params := url.Values{
		"client_id":   {f.clientID},
		"device_code": {code.deviceCode},
		"grant_type":  {grantType},
	}

	for attempt := 1; f.now().Sub(start) < code.ExpiresIn; attempt++ {
		if err := f.sleep(ctx, interval); err != nil {
			return "", err
		}

		f.logDebug("polling for authorization", "attempt", attempt, "interval", interval)

		resp, err := api.PostForm(f.httpClient, f.tokenURL, params)
		if err != nil {
			return "", gserrors.NewDeviceFlowErrorWithCause(gserrors.DeviceFlowProvider,
				"Failed to poll for authorization: "+err.Error(), err)
		}

		switch outcome := classifyPoll(resp).(type) {
		case tokenGranted:
			return outcome.token, nil
		case authorizationPending:
			continue
		case slowDown:
			interval += slowDownStep
		case codeExpired:
			return "", gserrors.NewDeviceFlowError(gserrors.DeviceFlowExpired, msgCodeExpired)
		case accessDenied:
			return "", gserrors.NewDeviceFlowError(gserrors.DeviceFlowDenied, msgAccessDenied)
		case providerError:
			return "", gserrors.NewDeviceFlowError(gserrors.DeviceFlowProvider, outcome.message())
		default:
			panic(fmt.Sprintf("unhandled poll outcome %T", outcome))
		}
	}

	return "", gserrors.NewDeviceFlowError(gserrors.DeviceFlowTimeout, msgAuthTimeout)
}

// statusRecorder keeps the status of the last response. cli/oauth folds
// several statuses into device.ErrUnsupported.
type statusRecorder struct {
	client *http.Client
	status int
}

func (r *statusRecorder) PostForm(u string, data url.Values) (*http.Response, error) {
	resp, err := r.client.PostForm(u, data)
	if resp != nil {
		r.status = resp.StatusCode
	}
	return resp, err
}

func (f *DeviceFlow) logDebug(msg string, args ...any) {
	if f.verbose {
		f.logger.Debug(msg, args...)
	}
}

// pollOutcome is the classified response of one token endpoint poll.
type pollOutcome interface {
	pollOutcome()
}

type (
	tokenGranted         struct{ token string }
	authorizationPending struct{}
	slowDown             struct{}
	codeExpired          struct{}
	accessDenied         struct{}
	providerError        struct {
		code        string
		description string
		status      int
	}
)

func (tokenGranted) pollOutcome()         {}
func (authorizationPending) pollOutcome() {}
func (slowDown) pollOutcome()             {}
func (codeExpired) pollOutcome()          {}
func (accessDenied) pollOutcome()         {}
func (providerError) pollOutcome()        {}

func (p providerError) message() string {
	switch {
	case p.description != "":
		return p.description
	case p.code != "":
		return p.code
	default:
		return fmt.Sprintf("unexpected response from GitHub (HTTP %d)", p.status)
	}
}

func classifyPoll(resp *api.FormResponse) pollOutcome {
	if token := resp.Get("access_token"); token != "" {
		return tokenGranted{token: token}
	}

	switch code := resp.Get("error"); code {
	case "authorization_pending":
		return authorizationPending{}
	case "slow_down":
		return slowDown{}
	case "expired_token":
		return codeExpired{}
	case "access_denied":
		return accessDenied{}
	default:
		return providerError{
			code:        code,
			description: resp.Get("error_description"),
			status:      resp.StatusCode,
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
