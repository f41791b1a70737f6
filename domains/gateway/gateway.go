// Package gateway defines the normalized event shapes forwarded to webhook
// consumers. Field names are part of the wire contract and stay camelCase.
package gateway

// Event names emitted to webhook consumers.
const (
	EventMessage      = "message"
	EventStatus       = "status"
	EventQRGenerated  = "qr_generated"
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
)

// Message kinds as reported in NormalizedMessage.MessageType. They mirror the
// protocol field that carried the content.
const (
	KindConversation = "conversation"
	KindExtendedText = "extendedTextMessage"
	KindImage        = "imageMessage"
	KindVideo        = "videoMessage"
	KindDocument     = "documentMessage"
	KindAudio        = "audioMessage"
	KindSticker      = "stickerMessage"
	KindLocation     = "locationMessage"
	KindUnknown      = "unknown"
)

// NormalizedMessage is the flattened representation of one inbound message.
// Pointer fields serialize as JSON null when the value could not be resolved,
// which consumers rely on to distinguish "absent" from "empty".
type NormalizedMessage struct {
	Event       string  `json:"event"`
	MessageID   string  `json:"messageId"`
	FromMe      bool    `json:"fromMe"`
	From        *string `json:"from"`
	GroupJID    *string `json:"groupJid"`
	RemoteJID   string  `json:"remoteJid"`
	PushName    string  `json:"pushName"`
	IsGroup     bool    `json:"isGroup"`
	Timestamp   string  `json:"timestamp"`
	MessageType string  `json:"messageType"`
	HasMedia    bool    `json:"hasMedia"`
	Text        *string `json:"text"`
	Caption     string  `json:"caption,omitempty"`
	FileName    string  `json:"fileName,omitempty"`

	QuotedMessage *QuotedMessage   `json:"quotedMessage,omitempty"`
	Media         *MediaDescriptor `json:"media,omitempty"`
	Location      *LocationInfo    `json:"location,omitempty"`
}

// MediaDescriptor describes a media payload stored on local disk. FilePath is
// absolute; RelativePath ("<subfolder>/<fileName>") is the durable reference
// consumers should keep.
type MediaDescriptor struct {
	FileName     string `json:"fileName"`
	FilePath     string `json:"filePath"`
	RelativePath string `json:"relativePath"`
	MimeType     string `json:"mimeType"`
	Extension    string `json:"extension"`
	Size         int64  `json:"size"`
}

// QuotedMessage is a shallow summary of the message being replied to. Only
// identity and a text preview survive normalization.
type QuotedMessage struct {
	MessageID   string `json:"messageId,omitempty"`
	Participant string `json:"participant,omitempty"`
	Text        string `json:"text,omitempty"`
}

// LocationInfo carries the coordinates of a location share.
type LocationInfo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

// ConnectionEvent is the payload for session lifecycle webhooks.
type ConnectionEvent struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	QRCode    string `json:"qrCode,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
