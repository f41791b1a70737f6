package usecase

import (
	"context"

	domainMessage "github.com/knd27/kn-whatsapp-gateway/domains/message"
	domainStorage "github.com/knd27/kn-whatsapp-gateway/domains/storage"
	"github.com/knd27/kn-whatsapp-gateway/infrastructure/whatsapp"
	pkgError "github.com/knd27/kn-whatsapp-gateway/pkg/error"
)

type serviceMessage struct {
	messageRepo domainStorage.IMessageRepository
}

func NewMessageService(messageRepo domainStorage.IMessageRepository) domainMessage.IMessageUsecase {
	return &serviceMessage{
		messageRepo: messageRepo,
	}
}

func (service *serviceMessage) Inbox(ctx context.Context, request domainMessage.HistoryRequest) ([]domainStorage.StoredMessage, error) {
	return service.messageRepo.Inbox(ctx, request.Number, request.Limit)
}

func (service *serviceMessage) Sent(ctx context.Context, request domainMessage.HistoryRequest) ([]domainStorage.StoredMessage, error) {
	return service.messageRepo.Sent(ctx, request.Number, request.Limit)
}

func (service *serviceMessage) ByMessageID(ctx context.Context, messageID string) (*domainStorage.StoredMessage, error) {
	if messageID == "" {
		return nil, pkgError.ValidationError("message_id: cannot be blank.")
	}

	msg, err := service.messageRepo.ByMessageID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, pkgError.NotFoundError("message " + messageID + " not found")
	}
	return msg, nil
}

// MediaPath locates the stored media file belonging to a message, whatever
// extension the sniffer gave it.
func (service *serviceMessage) MediaPath(_ context.Context, messageID string) (string, error) {
	if messageID == "" {
		return "", pkgError.ValidationError("message_id: cannot be blank.")
	}

	path := whatsapp.FindMediaByMessageID(messageID)
	if path == "" {
		return "", pkgError.NotFoundError("no media found for message " + messageID)
	}
	return path, nil
}
