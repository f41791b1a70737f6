package storage

import "context"

// StoredMessage is one row of the message log. SenderNumber is nil for
// messages sent by the connected account; ToNumber is nil for inbound
// messages.
type StoredMessage struct {
	ID           int64   `json:"id"`
	MessageID    string  `json:"message_id"`
	Timestamp    string  `json:"timestamp"`
	SenderNumber *string `json:"sender_number"`
	ToNumber     *string `json:"to_number"`
	RemoteJID    string  `json:"remote_jid"`
	PushName     string  `json:"push_name"`
	Text         *string `json:"text"`
	Media        *string `json:"media"`
}

// IMessageRepository persists and queries the message log.
type IMessageRepository interface {
	Insert(ctx context.Context, msg *StoredMessage) error
	Inbox(ctx context.Context, senderNumber string, limit int) ([]StoredMessage, error)
	Sent(ctx context.Context, toNumber string, limit int) ([]StoredMessage, error)
	ByMessageID(ctx context.Context, messageID string) (*StoredMessage, error)
	Close() error
}
