package tuya

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const signMethod = "HMAC-SHA256"

// stringToSign renders the canonical request description Tuya expects:
// METHOD, body digest, signed headers (none) and the path with sorted query.
func stringToSign(method, path string, query url.Values, body []byte) string {
	digest := sha256.Sum256(body)
	return strings.Join([]string{
		strings.ToUpper(method),
		hex.EncodeToString(digest[:]),
		"",
		canonicalURL(path, query),
	}, "\n")
}

func canonicalURL(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, v := range query[k] {
			pairs = append(pairs, k+"="+v)
		}
	}
	return path + "?" + strings.Join(pairs, "&")
}

// sign returns the upper-case hex HMAC-SHA256 of payload keyed by secret.
func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}
