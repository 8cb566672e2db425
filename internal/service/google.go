package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"recell-store/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleIdentity is the subset of the OpenID userinfo claims the store uses.
type GoogleIdentity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleVerifier exchanges an OAuth authorization code for an identity.
// Abstracted so tests can stub the Google round trip.
type GoogleVerifier interface {
	Verify(ctx context.Context, code string) (*GoogleIdentity, error)
}

type googleOAuth struct {
	conf *oauth2.Config
}

// NewGoogleVerifier builds the real verifier from the configured OAuth client.
func NewGoogleVerifier(cfg config.GoogleConfig) GoogleVerifier {
	return &googleOAuth{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *googleOAuth) Verify(ctx context.Context, code string) (*GoogleIdentity, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	resp, err := g.conf.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var identity GoogleIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, fmt.Errorf("userinfo missing subject or email")
	}
	return &identity, nil
}
