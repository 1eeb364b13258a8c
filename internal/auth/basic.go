// Package auth decides whether a request presents the gateway's static Basic credentials.
package auth

import (
	"bytes"
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"linkgate/internal/config"
)

var basicPrefix = []byte("Basic ")

// Authenticated reports whether header is a Basic authorization value carrying
// exactly cfg.Username and cfg.Password. Only the first colon of the decoded
// payload separates the two, so passwords may contain colons.
// Malformed input of any kind yields false.
func Authenticated(cfg config.GatewayConfig, header []byte) bool {
	if !bytes.HasPrefix(header, basicPrefix) {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(string(header[len(basicPrefix):]))
	if err != nil || !utf8.Valid(decoded) {
		return false
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return false
	}
	return parts[0] == cfg.Username && parts[1] == cfg.Password
}
