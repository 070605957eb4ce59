package identity

import "time"

// Settings is the persisted session blob. Applying it reconstructs a usable
// identity with no network calls, and Settings()/Apply round-trip losslessly
// for every field this package owns. Cookies are held here on behalf of the
// transport session, which seeds its jar from them.
type Settings struct {
	UUIDs             UUIDs             `json:"uuids" yaml:"uuids"`
	Mid               string            `json:"mid,omitempty" yaml:"mid,omitempty"`
	IgURur            string            `json:"ig_u_rur,omitempty" yaml:"ig_u_rur,omitempty"`
	IgWwwClaim        string            `json:"ig_www_claim,omitempty" yaml:"ig_www_claim,omitempty"`
	AuthorizationData AuthorizationData `json:"authorization_data" yaml:"authorization_data"`
	Cookies           map[string]string `json:"cookies" yaml:"cookies"`
	LastLogin         int64             `json:"last_login,omitempty" yaml:"last_login,omitempty"`
	DeviceSettings    DeviceSettings    `json:"device_settings" yaml:"device_settings"`
	UserAgent         string            `json:"user_agent" yaml:"user_agent"`
	Country           string            `json:"country" yaml:"country"`
	CountryCode       int               `json:"country_code" yaml:"country_code"`
	Locale            string            `json:"locale" yaml:"locale"`
	TimezoneOffset    int               `json:"timezone_offset" yaml:"timezone_offset"`
}

// Settings exports the current identity as a persistable blob. Cookies must
// be supplied by the transport session owning the jar.
func (i *Identity) Settings(cookies map[string]string) Settings {
	i.mu.Lock()
	defer i.mu.Unlock()
	var lastLogin int64
	if !i.LastLogin.IsZero() {
		lastLogin = i.LastLogin.Unix()
	}
	if cookies == nil {
		cookies = map[string]string{}
	}
	return Settings{
		UUIDs:             i.IDs,
		Mid:               i.Mid,
		IgURur:            i.IgURur,
		IgWwwClaim:        i.IgWwwClaim,
		AuthorizationData: i.Auth,
		Cookies:           cookies,
		LastLogin:         lastLogin,
		DeviceSettings:    i.Device,
		UserAgent:         i.UserAgent,
		Country:           i.Country,
		CountryCode:       i.CountryCode,
		Locale:            i.Locale,
		TimezoneOffset:    i.TimezoneOffset,
	}
}

// Apply reconstructs the identity from a settings blob. Fields absent from
// the blob keep their defaults; missing identifiers are regenerated. No
// network calls are made.
func (i *Identity) Apply(s Settings) {
	i.mu.Lock()
	i.IDs = s.UUIDs
	i.Auth = s.AuthorizationData
	if s.Mid != "" {
		i.Mid = s.Mid
	} else if mid, ok := s.Cookies["mid"]; ok {
		i.Mid = mid
	}
	i.IgURur = s.IgURur
	i.IgWwwClaim = s.IgWwwClaim
	if s.LastLogin != 0 {
		i.LastLogin = time.Unix(s.LastLogin, 0)
	} else {
		i.LastLogin = time.Time{}
	}
	if s.TimezoneOffset != 0 {
		i.TimezoneOffset = s.TimezoneOffset
	}
	if s.DeviceSettings != (DeviceSettings{}) {
		i.Device = s.DeviceSettings
	}
	if s.CountryCode != 0 {
		i.CountryCode = s.CountryCode
	}
	i.mu.Unlock()

	i.GenerateIDs(false)
	if s.Country != "" {
		i.SetCountry(s.Country)
	}
	if s.Locale != "" {
		i.SetLocale(s.Locale)
	}
	i.SetUserAgent(s.UserAgent)
}
