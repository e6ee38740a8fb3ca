package util

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// GravatarURL derives the avatar URL for an email address following
// the gravatar hashing rules: trim, lower-case, md5.
func GravatarURL(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(email))
	return fmt.Sprintf("http://www.gravatar.com/avatar/%s", hex.EncodeToString(sum[:]))
}
