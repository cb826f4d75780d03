package vk

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// SendMessage delivers a text reply to a peer, optionally with a keyboard.
func (c *Client) SendMessage(ctx context.Context, peerID int64, text string, keyboard *Keyboard) error {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(peerID, 10))
	params.Set("message", text)
	params.Set("random_id", strconv.FormatInt(int64(rand.Int31()), 10))

	if keyboard != nil {
		rendered, err := json.Marshal(keyboard)
		if err != nil {
			return errors.Wrap(err, "marshaling keyboard")
		}
		params.Set("keyboard", string(rendered))
	}

	_, err := c.call(ctx, "messages.send", params)
	return err
}

// SetTyping shows the "typing" activity indicator to a peer.
func (c *Client) SetTyping(ctx context.Context, peerID int64) error {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(peerID, 10))
	params.Set("type", "typing")

	_, err := c.call(ctx, "messages.setActivity", params)
	return err
}
