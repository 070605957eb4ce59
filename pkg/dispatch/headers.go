package dispatch

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"igclient/pkg/identity"
)

// baseHeaders builds the per-request header set the mobile client sends on
// every private call. Bandwidth and salt values are re-rolled each request.
// Identity fields are read from one locked snapshot.
func baseHeaders(idn *identity.Identity, domain string) map[string]string {
	hv := idn.HeaderValues()
	h := map[string]string{
		"X-IG-App-Locale":           hv.Locale,
		"X-IG-Device-Locale":        hv.Locale,
		"X-IG-Mapped-Locale":        hv.Locale,
		"X-Pigeon-Session-Id":       identity.GenerateUUID("UFS-", "-1"),
		"X-Pigeon-Rawclienttime":    fmt.Sprintf("%.3f", float64(time.Now().UnixMilli())/1000),
		"X-IG-Bandwidth-Speed-KBPS": fmt.Sprintf("%.3f", float64(2500000+rand.Intn(500000))/1000),
		"X-IG-Bandwidth-TotalBytes-B": strconv.Itoa(5000000 + rand.Intn(85000000)),
		"X-IG-Bandwidth-TotalTime-MS": strconv.Itoa(2000 + rand.Intn(7000)),
		"X-IG-App-Startup-Country":  strings.ToUpper(hv.Country),
		"X-Bloks-Version-Id":        identity.BloksVersioningID,
		"X-IG-WWW-Claim":            "0",
		"X-Bloks-Is-Layout-RTL":     "false",
		"X-Bloks-Is-Panorama-Enabled": "true",
		"X-IG-Device-ID":            hv.IDs.UUID,
		"X-IG-Family-Device-ID":     hv.IDs.PhoneID,
		"X-IG-Android-ID":           hv.IDs.AndroidDeviceID,
		"X-IG-Timezone-Offset":      strconv.Itoa(hv.TimezoneOffset),
		"X-IG-Connection-Type":      "WIFI",
		"X-IG-Capabilities":         "3brTvx0=",
		"X-IG-App-ID":               identity.AppID,
		"Priority":                  "u=3",
		"User-Agent":                hv.UserAgent,
		"Accept-Language":           strings.Replace(hv.Locale, "_", "-", 1),
		"Accept-Encoding":           "zstd, gzip, deflate",
		"Host":                      domain,
		"X-FB-HTTP-Engine":          "Liger",
		"Connection":                "keep-alive",
		"X-FB-Client-IP":            "True",
		"X-FB-Server-Cluster":       "True",
		"X-IG-Nav-Chain":            "9MV:self_profile:2,ProfileMediaTabFragment:self_profile:3,9Xf:self_following:4",
		"X-IG-SALT-IDS":             strconv.Itoa(1061162222 + rand.Intn(100000)),
	}
	if hv.WwwClaim != "" {
		h["X-IG-WWW-Claim"] = hv.WwwClaim
	}
	if hv.Mid != "" {
		h["X-MID"] = hv.Mid
	}
	userID := idn.UserID()
	h["IG-INTENDED-USER-ID"] = strconv.FormatInt(max64(userID, 0), 10)
	if userID > 0 {
		h["IG-U-DS-USER-ID"] = strconv.FormatInt(userID, 10)
		if hv.Rur != "" {
			h["IG-U-RUR"] = hv.Rur
		}
	}
	if auth := idn.AuthorizationHeader(); auth != "" {
		h["Authorization"] = auth
	}
	return h
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
