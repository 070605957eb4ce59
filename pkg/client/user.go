package client

import (
	"context"
	"fmt"
	"net/url"

	"igclient/pkg/dispatch"
	"igclient/pkg/errors"
)

const userShortQueryHash = "ad99dd9d3646cc3c0dda65debcd266a7"

// UserInfoV1 fetches a user's profile through the private channel. Requires
// an authenticated session.
func (c *Client) UserInfoV1(ctx context.Context, userID string) (map[string]interface{}, error) {
	if err := c.Identity.RequireLogin(); err != nil {
		return nil, err
	}
	body, err := c.private.JSONRequest(ctx, &dispatch.Request{
		Endpoint: fmt.Sprintf("users/%s/info/", userID),
	})
	if err != nil {
		return nil, err
	}
	user, ok := body["user"].(map[string]interface{})
	if !ok {
		return nil, errors.NewUserNotFound("user missing from response", nil)
	}
	return user, nil
}

// UserShortGQL fetches a minimal user record through the anonymous web
// graphql surface.
func (c *Client) UserShortGQL(ctx context.Context, userID string) (map[string]interface{}, error) {
	body, err := c.public.GraphQL(ctx, userShortQueryHash, "", map[string]interface{}{
		"user_id":      userID,
		"include_reel": true,
	}, nil)
	if err != nil {
		return nil, err
	}
	data, _ := body["data"].(map[string]interface{})
	user, ok := data["user"].(map[string]interface{})
	if !ok {
		return nil, errors.NewUserNotFound("user missing from graphql response", nil)
	}
	return user, nil
}

// UserInfo fetches a user's profile, preferring the private channel and
// falling back to the web surface when the mobile API rejects the session
// or throttles.
func (c *Client) UserInfo(ctx context.Context, userID string) (map[string]interface{}, error) {
	return dispatch.Fallback(ctx,
		func(ctx context.Context) (map[string]interface{}, error) {
			return c.UserInfoV1(ctx, userID)
		},
		func(ctx context.Context) (map[string]interface{}, error) {
			c.flow.InjectSessionIDToPublic()
			return c.UserShortGQL(ctx, userID)
		},
		dispatch.On[*errors.LoginRequired](),
		dispatch.On[*errors.ClientLoginRequired](),
		dispatch.On[*errors.PleaseWaitFewMinutes](),
		dispatch.On[*errors.ClientThrottledError](),
	)
}

// UserInfoByUsernameV1 resolves a profile by username through the private
// channel. Requires an authenticated session.
func (c *Client) UserInfoByUsernameV1(ctx context.Context, username string) (map[string]interface{}, error) {
	if err := c.Identity.RequireLogin(); err != nil {
		return nil, err
	}
	body, err := c.private.JSONRequest(ctx, &dispatch.Request{
		Endpoint: fmt.Sprintf("users/%s/usernameinfo/", username),
	})
	if err != nil {
		return nil, err
	}
	user, ok := body["user"].(map[string]interface{})
	if !ok {
		return nil, errors.NewUserNotFound("user missing from response", nil)
	}
	return user, nil
}

// UserInfoByUsernameA1 resolves a profile by username through the legacy
// web JSON rendition.
func (c *Client) UserInfoByUsernameA1(ctx context.Context, username string) (map[string]interface{}, error) {
	body, err := c.public.A1(ctx, "/"+url.PathEscape(username)+"/", nil, nil)
	if err != nil {
		return nil, err
	}
	user, ok := body["user"].(map[string]interface{})
	if !ok {
		return nil, errors.NewUserNotFound("user missing from page data", nil)
	}
	return user, nil
}

// UserInfoByUsername resolves a profile by username with web fallback.
func (c *Client) UserInfoByUsername(ctx context.Context, username string) (map[string]interface{}, error) {
	return dispatch.Fallback(ctx,
		func(ctx context.Context) (map[string]interface{}, error) {
			return c.UserInfoByUsernameV1(ctx, username)
		},
		func(ctx context.Context) (map[string]interface{}, error) {
			return c.UserInfoByUsernameA1(ctx, username)
		},
		dispatch.On[*errors.LoginRequired](),
		dispatch.On[*errors.ClientLoginRequired](),
		dispatch.On[*errors.PleaseWaitFewMinutes](),
		dispatch.On[*errors.ClientThrottledError](),
	)
}
