package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/example/eventhub/internal/gateway"
)

// SignUp creates an account and keeps the issued token.
func (c *Client) SignUp(ctx context.Context, credentials gateway.Credentials) (gateway.Session, error) {
	return c.authenticate(ctx, "/auth/signup", credentials)
}

// SignIn authenticates and keeps the issued token.
func (c *Client) SignIn(ctx context.Context, credentials gateway.Credentials) (gateway.Session, error) {
	return c.authenticate(ctx, "/auth/signin", credentials)
}

func (c *Client) authenticate(ctx context.Context, path string, credentials gateway.Credentials) (gateway.Session, error) {
	var session gateway.Session
	if err := c.do(ctx, http.MethodPost, path, nil, credentials, &session); err != nil {
		return gateway.Session{}, err
	}
	c.SetToken(session.AccessToken)
	c.log(ctx, "authenticate", "user_id", session.User.ID).InfoContext(ctx, "session established")
	return session, nil
}

// SignInWithProvider asks the gateway for the provider's sign-in URL without
// following the redirect.
func (c *Client) SignInWithProvider(ctx context.Context, provider, redirectTo string) (string, error) {
	params := url.Values{}
	if redirectTo != "" {
		params.Set("redirect_to", redirectTo)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/auth/oauth/"+url.PathEscape(provider), params), nil)
	if err != nil {
		return "", fmt.Errorf("httpclient: build request: %w", err)
	}

	noRedirect := *c.http
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := noRedirect.Do(req)
	if err != nil {
		return "", fmt.Errorf("httpclient: provider sign-in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", decodeError(resp)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("httpclient: provider sign-in: missing redirect location (status %d)", resp.StatusCode)
	}
	return location, nil
}

// SignOut ends the session on the gateway and forgets the token. The token is
// dropped even when the gateway call fails.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/signout", nil, nil, nil)
	c.SetToken("")
	return err
}
