package vk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// ErrLongPollExpired signals that the long poll key or ts is no longer valid
// and the server must be re-fetched via GetLongPollServer.
var ErrLongPollExpired = errors.New("long poll session expired")

// LongPollServer holds the connection parameters of a bots long poll session.
type LongPollServer struct {
	Key    string `json:"key"`
	Server string `json:"server"`
	TS     string `json:"ts"`
}

// GetLongPollServer fetches fresh long poll connection parameters.
func (c *Client) GetLongPollServer(ctx context.Context, groupID int64) (*LongPollServer, error) {
	params := url.Values{}
	params.Set("group_id", strconv.FormatInt(groupID, 10))

	response, err := c.call(ctx, "groups.getLongPollServer", params)
	if err != nil {
		return nil, err
	}

	server := &LongPollServer{}
	if err := json.Unmarshal(response, server); err != nil {
		return nil, errors.Wrap(err, "parsing long poll server")
	}
	return server, nil
}

type pollResponse struct {
	TS      string            `json:"ts"`
	Updates []json.RawMessage `json:"updates"`
	Failed  int               `json:"failed"`
}

type rawUpdate struct {
	Type   string `json:"type"`
	Object struct {
		Message *IncomingMessage `json:"message"`
	} `json:"object"`
}

// Poll waits up to `wait` seconds for new events and returns the incoming
// messages among them. The server's ts cursor is advanced in place. A failed
// poll session surfaces as ErrLongPollExpired.
func (c *Client) Poll(ctx context.Context, server *LongPollServer, wait int) ([]*IncomingMessage, error) {
	params := url.Values{}
	params.Set("act", "a_check")
	params.Set("key", server.Key)
	params.Set("ts", server.TS)
	params.Set("wait", strconv.Itoa(wait))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, server.Server+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating poll request")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "polling")
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading poll response")
	}

	var poll pollResponse
	if err := json.Unmarshal(body, &poll); err != nil {
		return nil, errors.Wrap(err, "parsing poll response")
	}
	if poll.Failed != 0 {
		// failed=1 only outdates ts; anything else invalidates the key too.
		if poll.Failed == 1 && poll.TS != "" {
			server.TS = poll.TS
			return nil, nil
		}
		return nil, ErrLongPollExpired
	}
	server.TS = poll.TS

	var messages []*IncomingMessage
	for _, raw := range poll.Updates {
		var update rawUpdate
		if err := json.Unmarshal(raw, &update); err != nil {
			return nil, errors.Wrap(err, "parsing update")
		}
		if update.Type != "message_new" || update.Object.Message == nil {
			continue
		}
		messages = append(messages, update.Object.Message)
	}
	return messages, nil
}
