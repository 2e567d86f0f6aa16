// Package avatar resolves a default avatar URL for new accounts. Lookup is
// best-effort: signup proceeds without an avatar when it fails.
package avatar

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Resolver produces a publicly resolvable avatar URL for an email address.
type Resolver interface {
	Resolve(ctx context.Context, email string) (string, error)
}

// GravatarResolver probes gravatar.com for an image registered to the
// email. The d=404 parameter makes Gravatar answer 404 instead of a
// generated placeholder, so absence is detectable.
type GravatarResolver struct {
	client  *http.Client
	baseURL string
}

func NewGravatarResolver() *GravatarResolver {
	return &GravatarResolver{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: "https://www.gravatar.com/avatar",
	}
}

func (g *GravatarResolver) Resolve(ctx context.Context, email string) (string, error) {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	url := fmt.Sprintf("%s/%s?s=250&d=404", g.baseURL, hex.EncodeToString(sum[:]))

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("no gravatar for %s: %s", email, resp.Status)
	}

	return url, nil
}
