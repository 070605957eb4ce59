// Package client wires the full stack together: configuration, identity,
// both transport sessions, the dual-channel dispatchers and the auth flow,
// behind one facade.
package client

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"igclient/pkg/auth"
	"igclient/pkg/config"
	"igclient/pkg/dispatch"
	"igclient/pkg/identity"
	"igclient/pkg/logger"
	"igclient/pkg/signer"
	"igclient/pkg/transport"
)

// Client is the top-level entry point. One Client represents one account
// context: a device identity, its cookies and authorization, and the two
// request channels sharing that state.
type Client struct {
	cfg *config.Config
	log logger.Logger

	Identity *identity.Identity

	privateSession *transport.Session
	publicSession  *transport.Session

	private *dispatch.Private
	public  *dispatch.Public
	flow    *auth.Flow
}

// New builds a client from the configuration, falling back to defaults when
// cfg is nil.
func New(cfg *config.Config, log logger.Logger) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		var err error
		log, err = logger.New(&cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
	}

	idn := identity.New(log)
	idn.SetLocale(cfg.Locale)
	idn.SetCountry(cfg.Country)
	idn.TimezoneOffset = cfg.TimezoneOffset
	idn.GenerateIDs(false)

	privateSession, err := transport.New("https://"+cfg.APIDomain, cfg.ReadTimeout, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build private session: %w", err)
	}
	publicSession, err := transport.New(cfg.PublicURL, cfg.ReadTimeout, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build public session: %w", err)
	}

	sg := signer.NewHMACSigner("")
	private := dispatch.NewPrivate(privateSession, idn, sg, cfg, log)
	public := dispatch.NewPublic(publicSession, cfg, log)
	flow := auth.NewFlow(private, public, privateSession, publicSession, idn, log)

	c := &Client{
		cfg:            cfg,
		log:            log,
		Identity:       idn,
		privateSession: privateSession,
		publicSession:  publicSession,
		private:        private,
		public:         public,
		flow:           flow,
	}
	if cfg.Proxy != "" {
		if err := c.SetProxy(cfg.Proxy); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Private exposes the signed mobile-protocol channel.
func (c *Client) Private() *dispatch.Private { return c.private }

// Public exposes the anonymous web channel.
func (c *Client) Public() *dispatch.Public { return c.public }

// Auth exposes the authentication flow controller.
func (c *Client) Auth() *auth.Flow { return c.flow }

// Config returns the active configuration.
func (c *Client) Config() *config.Config { return c.cfg }

// SetProxy routes both channels through the proxy. Scheme defaults to
// http:// when absent; empty clears the proxy.
func (c *Client) SetProxy(dsn string) error {
	if err := c.privateSession.SetProxy(dsn); err != nil {
		return err
	}
	if err := c.publicSession.SetProxy(dsn); err != nil {
		return err
	}
	return nil
}

// Close drops both connection pools. The client stays usable; pools reopen
// lazily.
func (c *Client) Close() {
	c.privateSession.Close()
	c.publicSession.Close()
}

// Login authenticates with username and password.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.flow.Login(ctx, username, password)
}

// Relogin re-authenticates with the stored credentials.
func (c *Client) Relogin(ctx context.Context) error {
	return c.flow.Relogin(ctx)
}

// TwoFactorLogin completes a pending two-factor login.
func (c *Client) TwoFactorLogin(ctx context.Context, code, identifier string) error {
	return c.flow.TwoFactorLogin(ctx, code, identifier)
}

// LoginBySessionID resumes a session from its cookie value.
func (c *Client) LoginBySessionID(ctx context.Context, sessionID string) error {
	return c.flow.LoginBySessionID(ctx, sessionID)
}

// Logout invalidates the session and clears local auth state.
func (c *Client) Logout(ctx context.Context) error {
	return c.flow.Logout(ctx)
}

// GetSettings snapshots the full resumable state: device identity, ids,
// authorization and cookies.
func (c *Client) GetSettings() identity.Settings {
	return c.Identity.Settings(c.privateSession.CookieDict())
}

// SetSettings restores a snapshot without any network traffic.
func (c *Client) SetSettings(s identity.Settings) {
	c.Identity.Apply(s)
	if len(s.Cookies) > 0 {
		c.privateSession.SetCookies(s.Cookies)
	}
	if c.Identity.IsAuthenticated() {
		c.flow.MarkAuthenticated()
	}
}

// DumpSettings writes the settings snapshot to a YAML file.
func (c *Client) DumpSettings(path string) error {
	blob, err := yaml.Marshal(c.GetSettings())
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, blob, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// LoadSettings restores a snapshot from a YAML file.
func (c *Client) LoadSettings(path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	var s identity.Settings
	if err := yaml.Unmarshal(blob, &s); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}
	c.SetSettings(s)
	return nil
}

// SaveProfile persists the current settings under the account name through
// the layered settings stores.
func (c *Client) SaveProfile(manager *auth.Manager) error {
	username := c.flow.Username()
	if username == "" {
		return fmt.Errorf("no account to save")
	}
	return manager.Store(&auth.Profile{
		Username: username,
		Settings: c.GetSettings(),
	})
}

// RestoreProfile loads a stored profile and applies its settings.
func (c *Client) RestoreProfile(manager *auth.Manager, username string) error {
	profile, err := manager.Retrieve(username)
	if err != nil {
		return err
	}
	c.SetSettings(profile.Settings)
	c.flow.SetCredentials(profile.Username, "")
	return nil
}
