package faceshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// FaceShot represents a client for the FaceShot API
type FaceShot struct {
	Url       string
	parsedURL *url.URL

	token string
	user  User
}

// resolveURL builds a full URL from the base API URL and the given path
// segments. If the last segment contains a query string, it is split so
// JoinPath only receives the path portion and the query is appended.
func (fs *FaceShot) resolveURL(pathSegments ...string) string {
	if len(pathSegments) == 0 {
		return fs.parsedURL.String()
	}
	last := pathSegments[len(pathSegments)-1]
	if pathPart, query, ok := strings.Cut(last, "?"); ok {
		pathSegments[len(pathSegments)-1] = pathPart
		result := fs.parsedURL.JoinPath(pathSegments...)
		result.RawQuery = query
		return result.String()
	}
	return fs.parsedURL.JoinPath(pathSegments...).String()
}

// authResponse is the FaceShot login response.
type authResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// NewFaceShot creates a new FaceShot client and authenticates with the
// organizer's credentials.
func NewFaceShot(rawURL, email, password string) (*FaceShot, error) {
	fs, err := newClient(rawURL)
	if err != nil {
		return nil, err
	}
	if err := fs.login(email, password); err != nil {
		return nil, fmt.Errorf("could not authenticate: %w", err)
	}
	return fs, nil
}

// NewFaceShotFromToken creates a new FaceShot client from an existing
// bearer token.
func NewFaceShotFromToken(rawURL, token string) (*FaceShot, error) {
	fs, err := newClient(rawURL)
	if err != nil {
		return nil, err
	}
	fs.token = token
	return fs, nil
}

func newClient(rawURL string) (*FaceShot, error) {
	apiURL := strings.TrimSuffix(rawURL, "/") + "/api"
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid FaceShot URL: %w", err)
	}
	return &FaceShot{Url: apiURL, parsedURL: parsed}, nil
}

func (fs *FaceShot) login(email, password string) error {
	inputBody, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("could not marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, fs.resolveURL("auth", "login"), bytes.NewReader(inputBody))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response body: %w", err)
	}

	var result authResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("could not unmarshal response: %w", err)
	}

	fs.token = result.AccessToken
	fs.user = result.User
	return nil
}

// User returns the authenticated organizer. Zero value when the client was
// built from a bare token.
func (fs *FaceShot) User() User {
	return fs.user
}

// Logout clears the locally held credentials. The FaceShot API issues
// stateless tokens, so there is no remote session to delete.
func (fs *FaceShot) Logout() {
	fs.token = ""
	fs.user = User{}
}
