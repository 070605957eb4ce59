package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"igclient/pkg/dispatch"
	"igclient/pkg/errors"
	"igclient/pkg/identity"
	"igclient/pkg/logger"
	"igclient/pkg/signer"
	"igclient/pkg/transport"
)

// State tracks where a session is in its authentication lifecycle.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateTwoFactorPending
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateTwoFactorPending:
		return "two_factor_pending"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

const supportedCapabilities = `[{"name":"SUPPORTED_SDK_VERSIONS","value":"108.0,109.0,110.0,111.0,112.0,113.0,114.0,115.0,116.0,117.0,118.0,119.0"},` +
	`{"name":"FACE_TRACKER_VERSION","value":"14"},{"name":"COMPRESSION","value":"ETC2_COMPRESSION"},{"name":"world_tracker","value":"world_tracker_enabled"}]`

// Flow drives the authentication state machine: credential login with an
// optional second factor, session-id resume, relogin after expiry, and
// logout. All transitions are guarded by one mutex; network calls happen
// outside flow-global locks only where noted.
type Flow struct {
	private        *dispatch.Private
	public         *dispatch.Public
	privateSession *transport.Session
	publicSession  *transport.Session
	idn            *identity.Identity
	log            logger.Logger

	Encrypter   PasswordEncrypter
	CodeHandler CodeHandler

	mu              sync.Mutex
	state           State
	username        string
	password        string
	reloginAttempts int

	// pendingIdentifier carries the two-factor ticket between the login
	// attempt and the code submission.
	pendingIdentifier string
}

func NewFlow(private *dispatch.Private, public *dispatch.Public, privateSession, publicSession *transport.Session, idn *identity.Identity, log logger.Logger) *Flow {
	return &Flow{
		private:        private,
		public:         public,
		privateSession: privateSession,
		publicSession:  publicSession,
		idn:            idn,
		log:            log,
		Encrypter:      NewPlainEncrypter(),
		state:          StateAnonymous,
	}
}

// State reports the current lifecycle state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Username returns the account name of the stored credentials.
func (f *Flow) Username() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.username
}

// SetCredentials stores credentials without logging in. Used when resuming
// from persisted settings so a later relogin can work.
func (f *Flow) SetCredentials(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.username = username
	f.password = password
}

// MarkAuthenticated transitions to the authenticated state without a
// network call. Used when a valid authorization bundle was restored from
// persisted settings.
func (f *Flow) MarkAuthenticated() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateAuthenticated
}

// Login authenticates with username and password. Calling it while already
// authenticated with the same account is a no-op. A required second factor
// is resolved through CodeHandler when one is set; otherwise the typed
// error carrying the two-factor identifier is returned for the caller to
// finish with TwoFactorLogin.
func (f *Flow) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.NewBadCredentials("both username and password are required")
	}

	f.mu.Lock()
	if f.state == StateAuthenticated && f.username == username && f.idn.IsAuthenticated() {
		f.mu.Unlock()
		return nil
	}
	f.username = username
	f.password = password
	f.state = StateAuthenticating
	f.mu.Unlock()

	return f.login(ctx, false)
}

// Relogin re-authenticates with the stored credentials after a session
// expiry, wiping the stale authorization first. At most two relogins are
// allowed per client; a third attempt fails before touching the network.
func (f *Flow) Relogin(ctx context.Context) error {
	f.mu.Lock()
	if f.reloginAttempts > 1 {
		f.mu.Unlock()
		return errors.NewReloginAttemptExceeded()
	}
	f.reloginAttempts++
	if f.username == "" || f.password == "" {
		f.mu.Unlock()
		return errors.NewBadCredentials("no stored credentials to relogin with")
	}
	f.state = StateAuthenticating
	f.mu.Unlock()

	f.idn.ClearAuthorization()
	f.privateSession.ClearCookies()

	return f.login(ctx, true)
}

func (f *Flow) login(ctx context.Context, relogin bool) error {
	f.idn.GenerateIDs(false)

	if !relogin {
		if err := f.PreLoginFlow(ctx); err != nil {
			var pleaseWait *errors.PleaseWaitFewMinutes
			var throttled *errors.ClientThrottledError
			if stderrors.As(err, &pleaseWait) || stderrors.As(err, &throttled) {
				f.log.WithError(err).Warn("throttled during pre-login flow, continuing login")
			} else {
				f.setState(StateAnonymous)
				return err
			}
		}
	}

	encPassword, err := f.Encrypter.Encrypt(f.password)
	if err != nil {
		f.setState(StateAnonymous)
		return fmt.Errorf("failed to encrypt password: %w", err)
	}

	data := map[string]string{
		"jazoest":             signer.Jazoest(f.idn.IDs.PhoneID),
		"country_codes":       `[{"country_code":"1","source":["default"]}]`,
		"phone_id":            f.idn.IDs.PhoneID,
		"enc_password":        encPassword,
		"username":            f.username,
		"adid":                f.idn.IDs.AdvertisingID,
		"guid":                f.idn.IDs.UUID,
		"device_id":           f.idn.IDs.AndroidDeviceID,
		"google_tokens":       "[]",
		"login_attempt_count": "0",
	}

	res, err := f.private.Request(ctx, &dispatch.Request{
		Endpoint:      "accounts/login/",
		Data:          data,
		Login:         true,
		WithSignature: true,
	})
	if err != nil {
		var twoFactor *errors.TwoFactorRequired
		if stderrors.As(err, &twoFactor) {
			return f.handleTwoFactor(ctx, twoFactor)
		}
		f.setState(StateAnonymous)
		return err
	}

	f.completeLogin(res)
	f.PostLoginFlow(ctx)
	return nil
}

func (f *Flow) handleTwoFactor(ctx context.Context, twoFactor *errors.TwoFactorRequired) error {
	f.mu.Lock()
	f.state = StateTwoFactorPending
	f.pendingIdentifier = twoFactor.TwoFactorIdentifier
	handler := f.CodeHandler
	username := f.username
	f.mu.Unlock()

	if handler == nil {
		return twoFactor
	}
	code, err := handler(username)
	if err != nil {
		return fmt.Errorf("two-factor code handler failed: %w", err)
	}
	return f.TwoFactorLogin(ctx, code, twoFactor.TwoFactorIdentifier)
}

// TwoFactorLogin completes a pending login with the verification code. An
// empty identifier falls back to the one captured from the login attempt.
func (f *Flow) TwoFactorLogin(ctx context.Context, code, identifier string) error {
	f.mu.Lock()
	if identifier == "" {
		identifier = f.pendingIdentifier
	}
	username := f.username
	f.mu.Unlock()
	if identifier == "" {
		return errors.NewBadCredentials("no pending two-factor identifier")
	}

	data := map[string]string{
		"verification_code":     code,
		"phone_id":              f.idn.IDs.PhoneID,
		"_csrftoken":            f.idn.CSRFToken(f.privateSession.CookieValue("csrftoken")),
		"two_factor_identifier": identifier,
		"username":              username,
		"trust_this_device":     "0",
		"guid":                  f.idn.IDs.UUID,
		"device_id":             f.idn.IDs.AndroidDeviceID,
		"waterfall_id":          uuid.NewString(),
		"verification_method":   "3",
	}
	res, err := f.private.Request(ctx, &dispatch.Request{
		Endpoint:      "accounts/two_factor_login/",
		Data:          data,
		Login:         true,
		WithSignature: true,
	})
	if err != nil {
		return err
	}

	f.completeLogin(res)
	f.PostLoginFlow(ctx)
	return nil
}

// completeLogin captures the authorization bundle from a successful login
// response and transitions to the authenticated state.
func (f *Flow) completeLogin(res *dispatch.Result) {
	if raw := res.Header.Get("ig-set-authorization"); raw != "" {
		f.idn.SetAuthorization(f.idn.ParseAuthorization(raw))
	}
	f.idn.LastLogin = time.Now()

	f.mu.Lock()
	f.state = StateAuthenticated
	f.pendingIdentifier = ""
	f.mu.Unlock()

	f.log.WithFields(map[string]interface{}{
		"username": f.Username(),
		"user_id":  f.idn.UserID(),
	}).Info("login complete")
}

// LoginBySessionID resumes an existing session from its cookie value. The
// numeric user id is taken from the session id prefix and the session is
// verified with a private profile fetch, falling back to an anonymous web
// lookup when the mobile surface rejects it.
func (f *Flow) LoginBySessionID(ctx context.Context, sessionID string) error {
	userID := userIDFromSessionID(sessionID)
	if userID == "" {
		return errors.NewBadCredentials("session id does not start with a numeric user id")
	}

	f.privateSession.SetCookies(map[string]string{"sessionid": sessionID})
	f.idn.GenerateIDs(false)
	f.idn.SetAuthorization(identity.AuthorizationData{
		DSUserID:  userID,
		SessionID: sessionID,
	})

	_, err := dispatch.Fallback(ctx,
		func(ctx context.Context) (map[string]interface{}, error) {
			return f.private.JSONRequest(ctx, &dispatch.Request{
				Endpoint: fmt.Sprintf("users/%s/info/", userID),
			})
		},
		func(ctx context.Context) (map[string]interface{}, error) {
			f.InjectSessionIDToPublic()
			return f.public.GraphQL(ctx, "ad99dd9d3646cc3c0dda65debcd266a7", "", map[string]interface{}{
				"user_id":      userID,
				"include_reel": true,
			}, nil)
		},
		dispatch.On[*errors.LoginRequired](),
		dispatch.On[*errors.ClientLoginRequired](),
		dispatch.On[*errors.ClientForbiddenError](),
	)
	if err != nil {
		f.idn.ClearAuthorization()
		return err
	}

	f.mu.Lock()
	f.state = StateAuthenticated
	f.mu.Unlock()
	return nil
}

// InjectSessionIDToPublic copies the authenticated session cookies onto the
// public channel so web-surface calls run with the logged-in identity.
func (f *Flow) InjectSessionIDToPublic() {
	private := f.privateSession.CookieDict()
	cookies := map[string]string{}
	for _, name := range []string{"sessionid", "rur", "mid", "ds_user_id", "ig_did"} {
		if v, ok := private[name]; ok && v != "" {
			cookies[name] = v
		}
	}
	if cookies["sessionid"] == "" {
		if sid := f.idn.SessionID(); sid != "" {
			cookies["sessionid"] = sid
		}
	}
	if cookies["ds_user_id"] == "" && f.idn.UserID() > 0 {
		cookies["ds_user_id"] = strconv.FormatInt(f.idn.UserID(), 10)
	}
	if cookies["mid"] == "" && f.idn.Mid != "" {
		cookies["mid"] = f.idn.Mid
	}
	f.publicSession.SetCookies(cookies)
}

// Logout invalidates the session server-side and resets local state.
func (f *Flow) Logout(ctx context.Context) error {
	_, err := f.private.Request(ctx, &dispatch.Request{
		Endpoint: "accounts/logout/",
		Data: map[string]string{
			"guid":              f.idn.IDs.UUID,
			"phone_id":          f.idn.IDs.PhoneID,
			"_csrftoken":        f.idn.CSRFToken(f.privateSession.CookieValue("csrftoken")),
			"device_id":         f.idn.IDs.AndroidDeviceID,
			"one_tap_app_login": "true",
		},
	})
	f.idn.ClearAuthorization()
	f.privateSession.ClearCookies()

	f.mu.Lock()
	f.state = StateAnonymous
	f.pendingIdentifier = ""
	f.mu.Unlock()
	return err
}

// PreLoginFlow replays the device sync the app performs before showing the
// login screen.
func (f *Flow) PreLoginFlow(ctx context.Context) error {
	return f.syncLauncher(ctx, true)
}

// PostLoginFlow replays the app's cold-start fetches. Failures are logged,
// not returned: the login itself already succeeded.
func (f *Flow) PostLoginFlow(ctx context.Context) {
	if err := f.fetchReelsTray(ctx); err != nil {
		f.log.WithError(err).Warn("post-login reels tray fetch failed")
	}
	if err := f.fetchTimeline(ctx); err != nil {
		f.log.WithError(err).Warn("post-login timeline fetch failed")
	}
}

func (f *Flow) syncLauncher(ctx context.Context, login bool) error {
	data := map[string]string{
		"id":                      f.idn.IDs.UUID,
		"server_config_retrieval": "1",
	}
	if !login {
		data["_uid"] = strconv.FormatInt(f.idn.UserID(), 10)
		data["_uuid"] = f.idn.IDs.UUID
	}
	_, err := f.private.Request(ctx, &dispatch.Request{
		Endpoint:      "launcher/sync/",
		Data:          data,
		Login:         login,
		WithSignature: true,
	})
	return err
}

func (f *Flow) fetchReelsTray(ctx context.Context) error {
	_, err := f.private.Request(ctx, &dispatch.Request{
		Endpoint: "feed/reels_tray/",
		Data: map[string]string{
			"supported_capabilities_new": supportedCapabilities,
			"reason":                     "cold_start",
			"timezone_offset":            strconv.Itoa(f.idn.TimezoneOffset),
			"tray_session_id":            f.idn.IDs.TraySessionID,
			"request_id":                 f.idn.IDs.RequestID,
			"_uuid":                      f.idn.IDs.UUID,
		},
		WithSignature: true,
	})
	return err
}

func (f *Flow) fetchTimeline(ctx context.Context) error {
	_, err := f.private.Request(ctx, &dispatch.Request{
		Endpoint: "feed/timeline/",
		Data: map[string]string{
			"feed_view_info":     "[]",
			"phone_id":           f.idn.IDs.PhoneID,
			"battery_level":      "100",
			"timezone_offset":    strconv.Itoa(f.idn.TimezoneOffset),
			"device_id":          f.idn.IDs.UUID,
			"request_id":         f.idn.IDs.RequestID,
			"is_pull_to_refresh": "0",
			"_uuid":              f.idn.IDs.UUID,
			"is_charging":        "1",
			"will_sound_on":      "1",
			"session_id":         f.idn.IDs.ClientSessionID,
			"bloks_versioning_id": identity.BloksVersioningID,
			"reason":             "cold_start_fetch",
		},
		Headers: map[string]string{
			"X-Ads-Opt-Out":        "0",
			"X-DEVICE-ID":          f.idn.IDs.UUID,
			"X-CM-Bandwidth-KBPS":  "-1.0",
			"X-CM-Latency":         "-1",
		},
	})
	return err
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// userIDFromSessionID extracts the leading numeric user id from a session
// cookie, tolerant of both raw and percent-encoded separators.
func userIDFromSessionID(sessionID string) string {
	for _, sep := range []string{"%3A", "%3a", ":"} {
		if idx := strings.Index(sessionID, sep); idx > 0 {
			sessionID = sessionID[:idx]
			break
		}
	}
	for i, r := range sessionID {
		if r < '0' || r > '9' {
			sessionID = sessionID[:i]
			break
		}
	}
	if sessionID == "" {
		return ""
	}
	if _, err := strconv.ParseInt(sessionID, 10, 64); err != nil {
		return ""
	}
	return sessionID
}
