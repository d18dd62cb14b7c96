// Package tado implements the client for the Tadoº REST API used by this
// server: zone discovery, zone state, home presence and pushing full-week
// timetable blocks.
package tado

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	baseAPIURL          = "https://my.tado.com"
	authURL             = "https://auth.tado.com/oauth/token"
	defaultClientSecret = "wZaRN7rpjn3FoNyF5IFuxg9uMzYJcvOoQ8QWiIqS3hfk6gLhVlG57j5YNoZL2Rtc"
)

// APIClient calls the Tadoº REST API. It authenticates lazily: the first API
// call logs in with the password grant and looks up the account's home id;
// subsequent calls reuse the access token until it expires.
type APIClient struct {
	HTTPClient *http.Client

	username     string
	password     string
	clientSecret string
	apiURL       string
	authURL      string

	lock         sync.Mutex
	accessToken  string
	refreshToken string
	expires      time.Time
	homeID       int
}

// New creates an APIClient for the provided credentials. clientSecret may be
// blank, in which case the default web application secret is used.
func New(username, password, clientSecret string) (*APIClient, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	if clientSecret == "" {
		clientSecret = defaultClientSecret
	}
	return &APIClient{
		HTTPClient:   http.DefaultClient,
		username:     username,
		password:     password,
		clientSecret: clientSecret,
		apiURL:       baseAPIURL,
		authURL:      authURL,
	}, nil
}

func (c *APIClient) authenticate(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expires) {
		return nil
	}

	grantType, credential := "password", c.password
	if c.refreshToken != "" {
		grantType, credential = "refresh_token", c.refreshToken
	}

	form := url.Values{}
	form.Add("client_id", "tado-web-app")
	form.Add("client_secret", c.clientSecret)
	form.Add("grant_type", grantType)
	form.Add(grantType, credential)
	form.Add("scope", "home.user")
	if grantType == "password" {
		form.Add("username", c.username)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// a failed refresh forces a password login on the next attempt
		c.refreshToken = ""
		return fmt.Errorf("authenticate: %s", resp.Status)
	}

	var token struct {
		AccessToken  string  `json:"access_token"`
		RefreshToken string  `json:"refresh_token"`
		ExpiresIn    float64 `json:"expires_in"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	c.accessToken = token.AccessToken
	c.refreshToken = token.RefreshToken
	c.expires = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return nil
}

func (c *APIClient) initialize(ctx context.Context) error {
	if err := c.authenticate(ctx); err != nil {
		return err
	}
	if c.getHomeID() > 0 {
		return nil
	}

	body, err := c.do(ctx, http.MethodGet, c.apiURL+"/api/v1/me", nil)
	if err != nil {
		return fmt.Errorf("me: %w", err)
	}
	var me struct {
		HomeID int `json:"homeId"`
	}
	if err = json.Unmarshal(body, &me); err != nil {
		return fmt.Errorf("me: %w", err)
	}
	c.lock.Lock()
	c.homeID = me.HomeID
	c.lock.Unlock()
	return nil
}

func (c *APIClient) getHomeID() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.homeID
}

func (c *APIClient) getToken() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.accessToken
}

func (c *APIClient) homeURL(endpoint string) string {
	return c.apiURL + "/api/v2/homes/" + strconv.Itoa(c.getHomeID()) + endpoint
}

func (c *APIClient) call(ctx context.Context, method, endpoint string, request, response any) error {
	if err := c.initialize(ctx); err != nil {
		return err
	}

	var payload io.Reader
	if request != nil {
		body, err := json.Marshal(request)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(body)
	}

	body, err := c.do(ctx, method, c.homeURL(endpoint), payload)
	if err != nil {
		return err
	}
	if response != nil {
		err = json.Unmarshal(body, response)
	}
	return err
}

func (c *APIClient) do(ctx context.Context, method, callURL string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, callURL, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Authorization", "Bearer "+c.getToken())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusNoContent:
		return nil, nil
	case http.StatusUnprocessableEntity:
		errBody, _ := io.ReadAll(resp.Body)
		return nil, errors.New(string(errBody))
	default:
		return nil, errors.New(resp.Status)
	}
}
