package common

import (
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// Schemes accepted for editor links
var allowedLinkSchemes = []string{"http", "https", "mailto"}

// Hosts whose watch URLs are rewritten to the embeddable player URL
var youtubeHosts = []string{"youtube.com", "www.youtube.com", "m.youtube.com"}

var youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,20}$`)

// ValidateLink checks a hyperlink target inserted from the editor toolbar.
// Returns the trimmed URL or ErrInvalidLink.
func ValidateLink(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidLink
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidLink
	}
	scheme := strings.ToLower(u.Scheme)
	if !slices.Contains(allowedLinkSchemes, scheme) {
		return "", ErrInvalidLink
	}
	if scheme != "mailto" && u.Host == "" {
		return "", ErrInvalidLink
	}
	return u.String(), nil
}

// EmbedURL validates a video URL and returns the URL to place in an iframe.
// YouTube watch and youtu.be short links become /embed/ links; other
// http(s) URLs pass through unchanged.
func EmbedURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrInvalidLink
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrInvalidLink
	}

	host := strings.ToLower(u.Host)
	var id string
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case slices.Contains(youtubeHosts, host):
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		}
	default:
		return u.String(), nil
	}

	if !youtubeIDPattern.MatchString(id) {
		return "", ErrInvalidLink
	}
	return "https://www.youtube.com/embed/" + id, nil
}
