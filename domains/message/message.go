package message

import (
	"context"

	"github.com/knd27/kn-whatsapp-gateway/domains/storage"
)

type IMessageUsecase interface {
	Inbox(ctx context.Context, request HistoryRequest) (response []storage.StoredMessage, err error)
	Sent(ctx context.Context, request HistoryRequest) (response []storage.StoredMessage, err error)
	ByMessageID(ctx context.Context, messageID string) (response *storage.StoredMessage, err error)
	MediaPath(ctx context.Context, messageID string) (path string, err error)
}

// HistoryRequest filters the message log. Number narrows to one counterpart;
// empty returns everything up to Limit.
type HistoryRequest struct {
	Number string `json:"number" query:"number"`
	Limit  int    `json:"limit" query:"limit"`
}
