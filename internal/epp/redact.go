package epp

import "regexp"

var secretElement = regexp.MustCompile(`(<(?:[A-Za-z0-9_.-]+:)?(?:pw|newPW)(?:\s[^>]*)?>)[^<]*(</)`)

// Redact masks password contents in an XML payload before it is logged.
func Redact(payload []byte) []byte {
	return secretElement.ReplaceAll(payload, []byte("${1}*****${2}"))
}
