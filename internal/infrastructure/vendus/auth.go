package vendus

import "encoding/base64"

// BasicAuthKey returns the Authorization header value for an API key. The
// provider expects the bare key in the Basic scheme, with no user/password
// separator.
func BasicAuthKey(key string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(key))
}
