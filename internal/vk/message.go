package vk

// IncomingMessage is a message_new event delivered over long poll.
type IncomingMessage struct {
	FromID      int64        `json:"from_id"`
	PeerID      int64        `json:"peer_id"`
	Text        string       `json:"text"`
	Payload     string       `json:"payload"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment of an incoming message. Only photos are of interest.
type Attachment struct {
	Type  string `json:"type"`
	Photo *Photo `json:"photo"`
}

// Photo attachment with its available size variants.
type Photo struct {
	OrigPhoto *PhotoSize  `json:"orig_photo"`
	Sizes     []PhotoSize `json:"sizes"`
}

// PhotoSize is one size variant of a photo.
type PhotoSize struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ImageURL resolves the message's attachments to at most one image URL: the
// original of the first photo when available, otherwise its largest size.
func (m *IncomingMessage) ImageURL() string {
	for _, attachment := range m.Attachments {
		if attachment.Type != "photo" || attachment.Photo == nil {
			continue
		}
		if attachment.Photo.OrigPhoto != nil && attachment.Photo.OrigPhoto.URL != "" {
			return attachment.Photo.OrigPhoto.URL
		}
		var best PhotoSize
		for _, size := range attachment.Photo.Sizes {
			if size.Width*size.Height > best.Width*best.Height {
				best = size
			}
		}
		if best.URL != "" {
			return best.URL
		}
	}
	return ""
}
