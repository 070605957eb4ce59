package signer

import (
	"strconv"

	"igclient/pkg/identity"
)

// WithDefaultData injects the device/session fields most private endpoints
// expect. Endpoints that forbid extra fields pass their payload through
// unchanged instead of using this helper.
func WithDefaultData(idn *identity.Identity, data map[string]string) map[string]string {
	out := map[string]string{
		"_uuid":     idn.IDs.UUID,
		"device_id": idn.IDs.AndroidDeviceID,
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}

// WithExtraData adds the identity fields used by profile-mutating calls on
// top of the defaults. Requires an authenticated identity.
func WithExtraData(idn *identity.Identity, data map[string]string) map[string]string {
	extra := map[string]string{
		"phone_id": idn.IDs.PhoneID,
		"_uid":     strconv.FormatInt(idn.UserID(), 10),
		"guid":     idn.IDs.UUID,
	}
	for k, v := range data {
		extra[k] = v
	}
	return WithDefaultData(idn, extra)
}

// WithActionData marks the payload as a user action over wifi, the shape
// used by like/follow style calls.
func WithActionData(idn *identity.Identity, data map[string]string) map[string]string {
	out := WithDefaultData(idn, map[string]string{"radio_type": "wifi-none"})
	for k, v := range data {
		out[k] = v
	}
	return out
}
