package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// DefaultImageExt is used for image URLs whose path has no usable extension.
const DefaultImageExt = ".jpg"

// imageExtPattern matches the extensions allowed in image keys.
var imageExtPattern = regexp.MustCompile(`^\.[a-z0-9]+$`)

// HashURL creates a SHA256 hash of a URL string.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ImageKey derives the content address of an absolute image URL: the first 8
// hex characters of its hash followed by the path's extension.
func ImageKey(absURL string) string {
	return HashURL(absURL)[:8] + ImageExt(absURL)
}

// ImageExt returns the lowercased extension of the URL path, or DefaultImageExt
// when it is missing or contains anything but ASCII letters and digits.
func ImageExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if !imageExtPattern.MatchString(ext) {
		return DefaultImageExt
	}
	return ext
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(strings.TrimSpace(relative))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}
