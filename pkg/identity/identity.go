// Package identity holds the mutable device and session identity used to
// impersonate one app install: device fingerprint fields, locale defaults,
// the decoded authorization bundle and the tracking values the platform
// hands back. It is the single source of truth for "is this session
// authenticated".
package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"igclient/pkg/errors"
	"igclient/pkg/logger"
)

const (
	// AppID and BloksVersioningID are constants tied to the emulated app
	// version and change only with app releases.
	AppID             = "567067343352427"
	BloksVersioningID = "ce555e5500576acd8e84a66018f54a05720f2dce29f0bb5a1f97f0c10d6fac48"

	userAgentBase = "Instagram %s Android (%d/%s; %s; %s; %s; %s; %s; %s; %s; %s)"

	authPrefix = "Bearer IGT:2:"
)

// DeviceSettings is the hardware fingerprint group. Generated once per
// logical device and stable across logins; regenerating it invalidates the
// platform's trust signal.
type DeviceSettings struct {
	AppVersion     string `json:"app_version" yaml:"app_version"`
	AndroidVersion int    `json:"android_version" yaml:"android_version"`
	AndroidRelease string `json:"android_release" yaml:"android_release"`
	DPI            string `json:"dpi" yaml:"dpi"`
	Resolution     string `json:"resolution" yaml:"resolution"`
	Manufacturer   string `json:"manufacturer" yaml:"manufacturer"`
	Device         string `json:"device" yaml:"device"`
	Model          string `json:"model" yaml:"model"`
	CPU            string `json:"cpu" yaml:"cpu"`
	VersionCode    string `json:"version_code" yaml:"version_code"`
}

// DefaultDevice returns the emulated handset used when no device settings
// are supplied.
func DefaultDevice() DeviceSettings {
	return DeviceSettings{
		AppVersion:     "269.0.0.18.75",
		AndroidVersion: 26,
		AndroidRelease: "8.0.0",
		DPI:            "480dpi",
		Resolution:     "1080x1920",
		Manufacturer:   "OnePlus",
		Device:         "devitron",
		Model:          "6T Dev",
		CPU:            "qcom",
		VersionCode:    "314665256",
	}
}

// UUIDs is the per-install identifier group.
type UUIDs struct {
	PhoneID         string `json:"phone_id" yaml:"phone_id"`
	UUID            string `json:"uuid" yaml:"uuid"`
	ClientSessionID string `json:"client_session_id" yaml:"client_session_id"`
	AdvertisingID   string `json:"advertising_id" yaml:"advertising_id"`
	AndroidDeviceID string `json:"android_device_id" yaml:"android_device_id"`
	RequestID       string `json:"request_id" yaml:"request_id"`
	TraySessionID   string `json:"tray_session_id" yaml:"tray_session_id"`
}

// AuthorizationData is the decoded bearer payload. Absent until login
// succeeds; invalidated wholesale on relogin.
type AuthorizationData struct {
	DSUserID                   string `json:"ds_user_id,omitempty" yaml:"ds_user_id,omitempty"`
	SessionID                  string `json:"sessionid,omitempty" yaml:"sessionid,omitempty"`
	ShouldUseHeaderOverCookies bool   `json:"should_use_header_over_cookies,omitempty" yaml:"should_use_header_over_cookies,omitempty"`
}

// Empty reports whether no authorization bundle is present.
func (a AuthorizationData) Empty() bool {
	return a.DSUserID == "" && a.SessionID == ""
}

// Identity is the mutable credential and identity state for one session.
// Mutation is single-writer: only the auth flow and settings loading write
// the authorization bundle and device fields.
type Identity struct {
	mu sync.Mutex

	Device DeviceSettings
	IDs    UUIDs

	UserAgent      string
	Locale         string
	Country        string
	CountryCode    int
	TimezoneOffset int

	Mid        string
	IgURur     string
	IgWwwClaim string

	Auth      AuthorizationData
	LastLogin time.Time

	csrfToken string

	log logger.Logger
}

// New creates an identity with defaults applied and fresh identifiers
// generated for any absent device fields.
func New(log logger.Logger) *Identity {
	if log == nil {
		log = logger.GetLogger()
	}
	idn := &Identity{
		Locale:         "en_US",
		Country:        "US",
		CountryCode:    1,
		TimezoneOffset: -14400,
		log:            log,
	}
	idn.Device = DefaultDevice()
	idn.GenerateIDs(false)
	idn.UserAgent = idn.buildUserAgent()
	return idn
}

// GenerateIDs fills in missing identifier fields. With force set it
// regenerates everything, which is a deliberate, rare operation: stable
// identifiers are part of the platform trust signal.
func (i *Identity) GenerateIDs(force bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if force {
		i.IDs = UUIDs{}
	}
	if i.IDs.PhoneID == "" {
		i.IDs.PhoneID = uuid.NewString()
	}
	if i.IDs.UUID == "" {
		i.IDs.UUID = uuid.NewString()
	}
	if i.IDs.ClientSessionID == "" {
		i.IDs.ClientSessionID = uuid.NewString()
	}
	if i.IDs.AdvertisingID == "" {
		i.IDs.AdvertisingID = uuid.NewString()
	}
	if i.IDs.AndroidDeviceID == "" {
		i.IDs.AndroidDeviceID = GenerateAndroidDeviceID()
	}
	if i.IDs.RequestID == "" {
		i.IDs.RequestID = uuid.NewString()
	}
	if i.IDs.TraySessionID == "" {
		i.IDs.TraySessionID = uuid.NewString()
	}
}

// GenerateAndroidDeviceID derives a fresh android device identifier.
func GenerateAndroidDeviceID() string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(time.Now().UnixNano(), 10)))
	return "android-" + hex.EncodeToString(sum[:])[:16]
}

// GenerateUUID returns a random uuid with optional prefix and suffix, e.g.
// the pigeon session id "UFS-<uuid>-1".
func GenerateUUID(prefix, suffix string) string {
	return prefix + uuid.NewString() + suffix
}

// GenerateMutationToken returns the token used for message sends and
// similar mutating calls.
func GenerateMutationToken() string {
	lo := big.NewInt(6800011111111111111)
	hi := big.NewInt(6800099999999999999)
	span := new(big.Int).Sub(hi, lo)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return lo.String()
	}
	return new(big.Int).Add(lo, n).String()
}

// GenToken returns a random token of the given size from the csrf alphabet.
func GenToken(size int) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	var b strings.Builder
	b.Grow(size)
	for j := 0; j < size; j++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			n = big.NewInt(0)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String()
}

func (i *Identity) buildUserAgent() string {
	d := i.Device
	return fmt.Sprintf(userAgentBase,
		d.AppVersion, d.AndroidVersion, d.AndroidRelease, d.DPI, d.Resolution,
		d.Manufacturer, d.Device, d.Model, d.CPU, i.Locale, d.VersionCode)
}

// SetDevice replaces the device settings and rebuilds the user agent. With
// reset set the identifier group is regenerated too.
func (i *Identity) SetDevice(device *DeviceSettings, reset bool) {
	i.mu.Lock()
	if device != nil {
		i.Device = *device
	} else {
		i.Device = DefaultDevice()
	}
	i.mu.Unlock()
	if reset {
		i.GenerateIDs(true)
	}
	i.SetUserAgent("")
}

// SetUserAgent overrides the user agent; empty rebuilds it from the device
// settings and locale.
func (i *Identity) SetUserAgent(ua string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if ua == "" {
		ua = i.buildUserAgent()
	}
	i.UserAgent = ua
}

// SetLocale updates locale (and country when the locale carries one) and
// patches the user agent.
func (i *Identity) SetLocale(locale string) {
	if locale == "" {
		return
	}
	i.mu.Lock()
	old := i.Locale
	i.Locale = locale
	i.UserAgent = strings.Replace(i.UserAgent, old, locale, 1)
	i.mu.Unlock()
	if idx := strings.LastIndex(locale, "_"); idx >= 0 {
		i.SetCountry(locale[idx+1:])
	}
}

// SetCountry sets the ISO country code, e.g. US.
func (i *Identity) SetCountry(country string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Country = strings.ToUpper(country)
}

// SetMid stores the mid tracking value the platform hands back on private
// responses.
func (i *Identity) SetMid(mid string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if mid != "" {
		i.Mid = mid
	}
}

// SetWwwClaim stores the www-claim value echoed back on private responses.
func (i *Identity) SetWwwClaim(claim string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if claim != "" {
		i.IgWwwClaim = claim
	}
}

// HeaderValues is a point-in-time copy of the mutable identity fields read
// when building request headers.
type HeaderValues struct {
	Locale         string
	Country        string
	UserAgent      string
	TimezoneOffset int
	IDs            UUIDs
	Mid            string
	Rur            string
	WwwClaim       string
}

// HeaderValues snapshots under the lock so header construction never races
// with the mid and claim updates written back from responses.
func (i *Identity) HeaderValues() HeaderValues {
	i.mu.Lock()
	defer i.mu.Unlock()
	return HeaderValues{
		Locale:         i.Locale,
		Country:        i.Country,
		UserAgent:      i.UserAgent,
		TimezoneOffset: i.TimezoneOffset,
		IDs:            i.IDs,
		Mid:            i.Mid,
		Rur:            i.IgURur,
		WwwClaim:       i.IgWwwClaim,
	}
}

// UserID returns the numeric user id from the authorization bundle, zero
// when unauthenticated.
func (i *Identity) UserID() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Auth.DSUserID == "" {
		return 0
	}
	id, err := strconv.ParseInt(i.Auth.DSUserID, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// IsAuthenticated reports whether an authorization bundle is present. This
// is the single authentication check; operations requiring login must fail
// fast on false rather than attempt the call.
func (i *Identity) IsAuthenticated() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return !i.Auth.Empty()
}

// RequireLogin fails fast when no authorization bundle is present. Every
// operation that only works logged in calls this before building a request,
// so an unauthenticated caller gets the typed error without a network call.
func (i *Identity) RequireLogin() error {
	if !i.IsAuthenticated() {
		return errors.NewPreLoginRequired()
	}
	return nil
}

// AuthorizationHeader returns the versioned bearer value, or empty when
// unauthenticated. Callers must treat empty as "no Authorization header".
func (i *Identity) AuthorizationHeader() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Auth.Empty() {
		return ""
	}
	raw, err := json.Marshal(i.Auth)
	if err != nil {
		return ""
	}
	return authPrefix + base64.StdEncoding.EncodeToString(raw)
}

// ParseAuthorization decodes a server-supplied authorization header into the
// bundle. Malformed input is logged and yields an empty bundle; the caller
// must tolerate an unauthenticated state rather than fail.
func (i *Identity) ParseAuthorization(raw string) AuthorizationData {
	if raw == "" {
		return AuthorizationData{}
	}
	b64 := raw[strings.LastIndex(raw, ":")+1:]
	if b64 == "" {
		return AuthorizationData{}
	}
	decoded, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		i.log.WarnWithFields("failed to decode authorization header", map[string]interface{}{
			"error": err.Error(),
		})
		return AuthorizationData{}
	}
	var data AuthorizationData
	if err := json.Unmarshal(decoded, &data); err != nil {
		i.log.WarnWithFields("failed to parse authorization header", map[string]interface{}{
			"error": err.Error(),
		})
		return AuthorizationData{}
	}
	return data
}

// SetAuthorization replaces the authorization bundle.
func (i *Identity) SetAuthorization(data AuthorizationData) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Auth = data
}

// ClearAuthorization wipes the bundle, e.g. before a relogin.
func (i *Identity) ClearAuthorization() {
	i.SetAuthorization(AuthorizationData{})
}

// CSRFToken returns the cached token, deriving it once from the given
// cookie value or generating a random one. Cached for the identity
// lifetime.
func (i *Identity) CSRFToken(cookieValue string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.csrfToken == "" {
		if cookieValue != "" {
			i.csrfToken = cookieValue
		} else {
			i.csrfToken = GenToken(64)
		}
	}
	return i.csrfToken
}

// SessionID returns the platform session cookie value recorded in the
// bundle, empty when unauthenticated.
func (i *Identity) SessionID() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.Auth.SessionID
}
