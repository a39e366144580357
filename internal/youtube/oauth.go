package youtube

import (
	"context"
	"fmt"

	"github.com/creatordesk/channelsync/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	youtubeapi "google.golang.org/api/youtube/v3"
	youtubeanalytics "google.golang.org/api/youtubeanalytics/v2"
)

// OAuthConfig handles the Google authorization-code flow for connecting a
// creator's channel. The exchanged tokens are handed to the credential store;
// nothing here keeps provider state.
type OAuthConfig struct {
	cfg *oauth2.Config
}

func NewOAuthConfig(clientID, clientSecret, redirectURI string) *OAuthConfig {
	return &OAuthConfig{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				youtubeapi.YoutubeReadonlyScope,
				youtubeanalytics.YtAnalyticsReadonlyScope,
			},
		},
	}
}

// AuthCodeURL returns the consent page URL. Offline access is requested so a
// refresh token is issued, and consent is forced so reconnecting a channel
// always yields a fresh refresh token.
func (c *OAuthConfig) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a credential pair.
func (c *OAuthConfig) Exchange(ctx context.Context, code string) (domain.CredentialPair, error) {
	token, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		return domain.CredentialPair{}, fmt.Errorf("token exchange failed: %w", err)
	}

	return domain.CredentialPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}, nil
}
