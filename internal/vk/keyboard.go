package vk

import "encoding/json"

// Keyboard is the bot keyboard attached to an outgoing message.
type Keyboard struct {
	OneTime bool       `json:"one_time"`
	Inline  bool       `json:"inline"`
	Buttons [][]Button `json:"buttons"`
}

// Button of a keyboard.
type Button struct {
	Action ButtonAction `json:"action"`
}

// ButtonAction describes what pressing a button does. Pressing a text button
// sends its label back as a message carrying the payload.
type ButtonAction struct {
	Type    string `json:"type"`
	Label   string `json:"label"`
	Payload string `json:"payload,omitempty"`
}

// NewTextButton builds a text button. The payload is marshaled to JSON and
// comes back verbatim in IncomingMessage.Payload.
func NewTextButton(label string, payload any) Button {
	button := Button{
		Action: ButtonAction{
			Type:  "text",
			Label: label,
		},
	}
	if payload != nil {
		if rendered, err := json.Marshal(payload); err == nil {
			button.Action.Payload = string(rendered)
		}
	}
	return button
}
