package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultAPIBase = "https://api.vk.com/method"
	apiVersion     = "5.199"
)

// Client is a minimal VK Bot API client for a single community.
type Client struct {
	token      string
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a VK client for the given group access token. Options may
// carry an *http.Client or a base URL override (used by tests).
func NewClient(token string, requestTimeout time.Duration, options ...any) (*Client, error) {
	client := &Client{
		token:   token,
		apiBase: defaultAPIBase,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
	for _, option := range options {
		switch t := option.(type) {
		case *http.Client:
			client.httpClient = t
		case string:
			client.apiBase = strings.TrimSuffix(t, "/")
		default:
			return nil, errors.Errorf("unknown option type %T", option)
		}
	}
	return client, nil
}

// APIError is the error payload of the VK API envelope.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk api error %d: %s", e.Code, e.Message)
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *APIError       `json:"error"`
}

// call invokes a VK API method and returns the raw response payload.
func (c *Client) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", c.token)
	params.Set("v", apiVersion)

	request, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apiBase+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, errors.Wrapf(err, "calling %s", method)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s response", method)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrapf(err, "parsing %s response", method)
	}
	if env.Error != nil {
		return nil, errors.Wrapf(env.Error, "calling %s", method)
	}
	return env.Response, nil
}

// GroupID resolves the id of the community the token belongs to.
func (c *Client) GroupID(ctx context.Context) (int64, error) {
	response, err := c.call(ctx, "groups.getById", nil)
	if err != nil {
		return 0, err
	}

	var payload struct {
		Groups []struct {
			ID int64 `json:"id"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(response, &payload); err != nil {
		return 0, errors.Wrap(err, "parsing groups.getById response")
	}
	if len(payload.Groups) == 0 {
		return 0, errors.New("groups.getById returned no group")
	}
	return payload.Groups[0].ID, nil
}
