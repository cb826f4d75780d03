package vk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newFakeAPI spins up a VK API stub. Method handlers receive the parsed form
// values and return the payload placed under "response".
func newFakeAPI(t *testing.T, handlers map[string]func(url.Values) any) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		method := r.URL.Path[1:]
		require.Equal(t, "token", r.Form.Get("access_token"))
		require.Equal(t, apiVersion, r.Form.Get("v"))

		handler, ok := handlers[method]
		require.True(t, ok, "unexpected method %s", method)

		w.Header().Set("Content-Type", "application/json")
		result := handler(r.Form)
		if apiErr, ok := result.(*APIError); ok {
			require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"error": apiErr}))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"response": result}))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient("token", 5*time.Second, server.URL)
	require.NoError(t, err)
	return server, client
}

func TestGroupID(t *testing.T) {
	_, client := newFakeAPI(t, map[string]func(url.Values) any{
		"groups.getById": func(url.Values) any {
			return map[string]any{"groups": []map[string]any{{"id": 222}}}
		},
	})

	groupID, err := client.GroupID(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(222), groupID)
}

func TestCallSurfacesAPIError(t *testing.T) {
	_, client := newFakeAPI(t, map[string]func(url.Values) any{
		"groups.getById": func(url.Values) any {
			return &APIError{Code: 5, Message: "User authorization failed"}
		},
	})

	_, err := client.GroupID(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "User authorization failed")
}

func TestSendMessageWithKeyboard(t *testing.T) {
	var sent url.Values
	_, client := newFakeAPI(t, map[string]func(url.Values) any{
		"messages.send": func(form url.Values) any {
			sent = form
			return 1
		},
	})

	keyboard := &Keyboard{
		Buttons: [][]Button{{
			NewTextButton("Новый чат", map[string]string{"command": "new_chat"}),
		}},
	}
	require.NoError(t, client.SendMessage(context.Background(), 42, "привет", keyboard))

	require.Equal(t, "42", sent.Get("peer_id"))
	require.Equal(t, "привет", sent.Get("message"))
	require.NotEmpty(t, sent.Get("random_id"))

	var rendered Keyboard
	require.NoError(t, json.Unmarshal([]byte(sent.Get("keyboard")), &rendered))
	require.Equal(t, "text", rendered.Buttons[0][0].Action.Type)
	require.Equal(t, "Новый чат", rendered.Buttons[0][0].Action.Label)
	require.JSONEq(t, `{"command":"new_chat"}`, rendered.Buttons[0][0].Action.Payload)
}

func TestSetTyping(t *testing.T) {
	var sent url.Values
	_, client := newFakeAPI(t, map[string]func(url.Values) any{
		"messages.setActivity": func(form url.Values) any {
			sent = form
			return 1
		},
	})

	require.NoError(t, client.SetTyping(context.Background(), 42))
	require.Equal(t, "typing", sent.Get("type"))
	require.Equal(t, "42", sent.Get("peer_id"))
}

func newFakeLongPoll(t *testing.T, response any) *LongPollServer {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "a_check", r.URL.Query().Get("act"))
		require.Equal(t, "key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(server.Close)
	return &LongPollServer{Key: "key", Server: server.URL, TS: "1"}
}

func TestPollParsesMessages(t *testing.T) {
	client, err := NewClient("token", 5*time.Second)
	require.NoError(t, err)

	server := newFakeLongPoll(t, map[string]any{
		"ts": "2",
		"updates": []map[string]any{
			{
				"type": "message_new",
				"object": map[string]any{
					"message": map[string]any{
						"from_id": 7,
						"peer_id": 7,
						"text":    "что на фото?",
						"attachments": []map[string]any{
							{
								"type": "photo",
								"photo": map[string]any{
									"sizes": []map[string]any{
										{"url": "https://example.com/s.jpg", "width": 75, "height": 75},
										{"url": "https://example.com/x.jpg", "width": 800, "height": 600},
									},
								},
							},
						},
					},
				},
			},
			{"type": "message_typing_state", "object": map[string]any{}},
		},
	})

	messages, err := client.Poll(context.Background(), server, 25)
	require.NoError(t, err)
	require.Equal(t, "2", server.TS)
	require.Len(t, messages, 1)
	require.Equal(t, int64(7), messages[0].FromID)
	require.Equal(t, "что на фото?", messages[0].Text)
	require.Equal(t, "https://example.com/x.jpg", messages[0].ImageURL())
}

func TestPollOutdatedTS(t *testing.T) {
	client, err := NewClient("token", 5*time.Second)
	require.NoError(t, err)

	server := newFakeLongPoll(t, map[string]any{"failed": 1, "ts": "40"})
	messages, err := client.Poll(context.Background(), server, 25)
	require.NoError(t, err)
	require.Empty(t, messages)
	require.Equal(t, "40", server.TS)
}

func TestPollExpiredKey(t *testing.T) {
	client, err := NewClient("token", 5*time.Second)
	require.NoError(t, err)

	server := newFakeLongPoll(t, map[string]any{"failed": 2})
	_, err = client.Poll(context.Background(), server, 25)
	require.ErrorIs(t, err, ErrLongPollExpired)
}

func TestImageURLPrefersOriginal(t *testing.T) {
	message := &IncomingMessage{
		Attachments: []Attachment{
			{Type: "doc"},
			{
				Type: "photo",
				Photo: &Photo{
					OrigPhoto: &PhotoSize{URL: "https://example.com/orig.jpg", Width: 1000, Height: 800},
					Sizes:     []PhotoSize{{URL: "https://example.com/m.jpg", Width: 130, Height: 87}},
				},
			},
		},
	}
	require.Equal(t, "https://example.com/orig.jpg", message.ImageURL())

	require.Equal(t, "", (&IncomingMessage{}).ImageURL())
}
