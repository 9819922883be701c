// Package naming provides slugs, short deterministic hashes, generated
// names and name validation shared by stores, use cases and the
// Kubernetes job infrastructure.
package naming

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	petname "github.com/dustinkirkland/golang-petname"
)

const (
	// MaxNameSlugLength leaves room for the suffix Kubernetes appends to generateName.
	MaxNameSlugLength = 45
	// MaxLabelSlugLength is the RFC 1123 label limit.
	MaxLabelSlugLength = 63
	// MaxLabelPrefixLength is the DNS subdomain limit of a label key prefix.
	MaxLabelPrefixLength = 253
)

var (
	slugDisallowed   = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashes       = regexp.MustCompile(`-{2,}`)
	prefixDisallowed = regexp.MustCompile(`[^a-z0-9.-]+`)
	keyDisallowed    = regexp.MustCompile(`[^a-z0-9._-]+`)
)

// Slugify lowercases s, replaces every run of characters other than
// [a-z0-9-] with a single dash, trims dashes at both ends and caps the
// result at max characters (0 means no cap).
func Slugify(s string, max int) string {
	slug := slugDisallowed.ReplaceAllString(strings.ToLower(s), "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if max > 0 && len(slug) > max {
		slug = strings.TrimRight(slug[:max], "-")
	}
	return slug
}

// LabelKey slugifies a Kubernetes label key. The optional prefix before the
// first slash keeps dots and is capped at MaxLabelPrefixLength, the name
// keeps dots and underscores and is capped at MaxLabelSlugLength.
func LabelKey(key string) string {
	prefix, name, ok := strings.Cut(key, "/")
	if !ok {
		return slugWith(keyDisallowed, key, MaxLabelSlugLength)
	}
	prefix = slugWith(prefixDisallowed, prefix, MaxLabelPrefixLength)
	name = slugWith(keyDisallowed, name, MaxLabelSlugLength)
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func slugWith(disallowed *regexp.Regexp, s string, max int) string {
	slug := disallowed.ReplaceAllString(strings.ToLower(s), "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-._")
	if len(slug) > max {
		slug = strings.TrimRight(slug[:max], "-._")
	}
	return slug
}

// ShortHash returns the hex SHA1 prefix of length n (clamped to digest size).
func ShortHash(s string, n int) string {
	sum := sha1.Sum([]byte(s))
	h := hex.EncodeToString(sum[:])
	if n > len(h) {
		n = len(h)
	}
	return h[:n]
}

// StableHash returns the hex MD5 digest of the concatenated parts. The
// result only depends on the values and their order.
func StableHash(parts ...string) string {
	h := md5.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NewRunName returns a human friendly adjective-animal name like "brave-otter".
func NewRunName() string {
	return petname.Generate(2, "-")
}

// FullDeploymentName joins flow and deployment names the way they are addressed on the CLI.
func FullDeploymentName(flow, deployment string) string {
	return fmt.Sprintf("%s/%s", flow, deployment)
}
