// Package validate normalizes and checks caller-supplied references before
// any network call is made.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidInput marks a malformed reference. Callers fail the request
// immediately with the wrapped description.
var ErrInvalidInput = fmt.Errorf("invalid input")

var repoPathRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// hackathonDomains are hosts that are always accepted as hackathon pages.
var hackathonDomains = []string{
	"devpost.com",
	"hackathon.com",
	"mlh.io",
	"hackerearth.com",
	"eventbrite.com",
}

// hackathonKeywords are accepted anywhere in the URL when the host is not a
// known hackathon platform.
var hackathonKeywords = []string{"hack", "hackathon", "challenge", "competition"}

// Repo extracts an "owner/repo" reference from a GitHub URL or a bare
// owner/repo string.
func Repo(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty repository reference", ErrInvalidInput)
	}

	// Bare owner/repo form.
	if !strings.Contains(ref, "://") && !strings.HasPrefix(ref, "github.com") {
		name := strings.TrimSuffix(ref, ".git")
		if repoPathRe.MatchString(name) {
			return name, nil
		}
	}

	raw := ref
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a URL", ErrInvalidInput, ref)
	}
	host := strings.ToLower(u.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return "", fmt.Errorf("%w: %q is not a github.com URL", ErrInvalidInput, ref)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%w: %q has no owner/repo path", ErrInvalidInput, ref)
	}
	name := parts[0] + "/" + strings.TrimSuffix(parts[1], ".git")
	if !repoPathRe.MatchString(name) {
		return "", fmt.Errorf("%w: %q is not a valid owner/repo", ErrInvalidInput, ref)
	}
	return name, nil
}

// HackathonURL checks that the URL plausibly points at a hackathon page:
// either a known hackathon platform, or any URL carrying a hackathon-ish
// keyword. The returned URL is normalized to include a scheme.
func HackathonURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty hackathon reference", ErrInvalidInput)
	}

	raw := ref
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q is not a URL", ErrInvalidInput, ref)
	}

	host := strings.ToLower(u.Hostname())
	for _, d := range hackathonDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return u.String(), nil
		}
	}
	lower := strings.ToLower(u.String())
	for _, kw := range hackathonKeywords {
		if strings.Contains(lower, kw) {
			return u.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %q does not look like a hackathon page", ErrInvalidInput, ref)
}

// Topic checks a free-text discovery topic.
func Topic(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("%w: empty topic", ErrInvalidInput)
	}
	if len(topic) > 200 {
		return "", fmt.Errorf("%w: topic longer than 200 characters", ErrInvalidInput)
	}
	return topic, nil
}

// SplitRepo parses "owner/repo" into its components.
func SplitRepo(fullName string) (owner, repo string, err error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: invalid repo format %q, expected \"owner/repo\"", ErrInvalidInput, fullName)
	}
	return parts[0], parts[1], nil
}
