package graph

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DeviceCode holds the verification details shown to the user during the
// device-code login flow.
type DeviceCode struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
	Message         string `json:"message"`
}

// TokenGrant is the successful outcome of a device-code login.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	Scope        string
}

// StartDeviceCode begins the device-code flow and returns the code the user
// must enter at the verification URI.
func (m *TokenManager) StartDeviceCode(ctx context.Context) (*DeviceCode, error) {
	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/devicecode", m.authority, m.tenantID)
	form := url.Values{
		"client_id": {m.clientID},
		"scope":     {strings.Join(m.scopes, " ")},
	}

	req, err := m.postFormRaw(ctx, endpoint, form)
	if err != nil {
		return nil, fmt.Errorf("request device code: %w", err)
	}
	return req, nil
}

// PollDeviceCode polls the token endpoint until the user completes the login,
// the code expires, or ctx is cancelled.
func (m *TokenManager) PollDeviceCode(ctx context.Context, code *DeviceCode) (TokenGrant, error) {
	interval := time.Duration(code.Interval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	deadline := time.Now().Add(time.Duration(code.ExpiresIn) * time.Second)

	form := url.Values{
		"client_id":   {m.clientID},
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
		"device_code": {code.DeviceCode},
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return TokenGrant{}, ctx.Err()
		case <-ticker.C:
		}
		if time.Now().After(deadline) {
			return TokenGrant{}, errors.New("device code expired before login completed")
		}

		resp, err := m.postForm(ctx, m.tokenEndpoint(), form)
		if err != nil {
			return TokenGrant{}, err
		}
		switch resp.Error {
		case "":
			return TokenGrant{
				AccessToken:  resp.AccessToken,
				RefreshToken: resp.RefreshToken,
				ExpiresIn:    resp.ExpiresIn,
				Scope:        resp.Scope,
			}, nil
		case "authorization_pending":
			continue
		case "slow_down":
			ticker.Reset(interval + 5*time.Second)
			continue
		default:
			return TokenGrant{}, fmt.Errorf("device code login failed: %s: %s", resp.Error, resp.ErrorDescription)
		}
	}
}

func (m *TokenManager) postFormRaw(ctx context.Context, endpoint string, form url.Values) (*DeviceCode, error) {
	req, err := newFormRequest(ctx, endpoint, form)
	if err != nil {
		return nil, err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded DeviceCode
	if err := decodeJSON(resp.Body, &decoded); err != nil {
		return nil, err
	}
	if decoded.DeviceCode == "" {
		return nil, errors.New("identity endpoint returned no device code")
	}
	return &decoded, nil
}
