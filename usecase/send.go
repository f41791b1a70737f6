package usecase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	_ "golang.org/x/image/webp"
	"google.golang.org/protobuf/proto"

	"github.com/knd27/kn-whatsapp-gateway/config"
	domainSend "github.com/knd27/kn-whatsapp-gateway/domains/send"
	domainStorage "github.com/knd27/kn-whatsapp-gateway/domains/storage"
	"github.com/knd27/kn-whatsapp-gateway/infrastructure/whatsapp"
	pkgError "github.com/knd27/kn-whatsapp-gateway/pkg/error"
	"github.com/knd27/kn-whatsapp-gateway/pkg/identity"
	pkgUtils "github.com/knd27/kn-whatsapp-gateway/pkg/utils"
	"github.com/knd27/kn-whatsapp-gateway/validations"
)

type serviceSend struct {
	messageRepo domainStorage.IMessageRepository
}

func NewSendService(messageRepo domainStorage.IMessageRepository) domainSend.ISendUsecase {
	return &serviceSend{
		messageRepo: messageRepo,
	}
}

func (service serviceSend) client() (*whatsmeow.Client, error) {
	client := whatsapp.GetClient()
	if client == nil {
		return nil, pkgError.ErrWaCLI
	}
	return client, nil
}

func resolveRecipient(phone string) (types.JID, error) {
	pkgUtils.SanitizePhone(&phone)
	jid, err := types.ParseJID(phone)
	if err != nil {
		return types.EmptyJID, pkgError.ValidationError(fmt.Sprintf("phone: invalid JID %s", phone))
	}
	return jid, nil
}

// storeSentMessage records an outbound message in the log with a NULL sender,
// mirroring how the gate stores own inbound copies.
func (service serviceSend) storeSentMessage(messageID string, recipient types.JID, text string, ts time.Time) {
	if service.messageRepo == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.Errorf("[SEND] Recovered from panic in asynchronous message storage: %v", r)
			}
		}()
		storeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		row := &domainStorage.StoredMessage{
			MessageID: messageID,
			Timestamp: ts.UTC().Format(time.RFC3339),
			RemoteJID: recipient.String(),
		}
		if number := identity.CanonicalNumber(recipient.String()); number != "" {
			row.ToNumber = &number
		}
		if text != "" {
			row.Text = &text
		}
		if err := service.messageRepo.Insert(storeCtx, row); err != nil {
			logrus.Warnf("[SEND] Failed to store sent message: %v", err)
		}
	}()
}

func (service serviceSend) SendText(ctx context.Context, request domainSend.MessageRequest) (response domainSend.GenericResponse, err error) {
	if err = validations.ValidateSendText(ctx, request); err != nil {
		return response, err
	}

	client, err := service.client()
	if err != nil {
		return response, err
	}
	recipient, err := resolveRecipient(request.Phone)
	if err != nil {
		return response, err
	}

	msg := &waE2E.Message{Conversation: proto.String(request.Message)}
	if request.ReplyMessageID != "" {
		msg = &waE2E.Message{
			ExtendedTextMessage: &waE2E.ExtendedTextMessage{
				Text: proto.String(request.Message),
				ContextInfo: &waE2E.ContextInfo{
					StanzaID:      proto.String(request.ReplyMessageID),
					Participant:   proto.String(recipient.String()),
					QuotedMessage: &waE2E.Message{Conversation: proto.String("")},
				},
			},
		}
	}

	resp, err := client.SendMessage(ctx, recipient, msg)
	if err != nil {
		return response, err
	}

	service.storeSentMessage(resp.ID, recipient, request.Message, resp.Timestamp)

	response.MessageID = resp.ID
	response.Status = fmt.Sprintf("Message sent to %s (server timestamp: %s)", recipient, resp.Timestamp.String())
	return response, nil
}

func (service serviceSend) SendImage(ctx context.Context, request domainSend.ImageRequest) (response domainSend.GenericResponse, err error) {
	if err = validations.ValidateSendImage(ctx, request); err != nil {
		return response, err
	}

	client, err := service.client()
	if err != nil {
		return response, err
	}
	recipient, err := resolveRecipient(request.Phone)
	if err != nil {
		return response, err
	}

	imageData, _, err := pkgUtils.DownloadFileFromURL(request.ImageURL)
	if err != nil {
		return response, pkgError.InternalServerError(fmt.Sprintf("failed to download image from URL %v", err))
	}
	if int64(len(imageData)) > config.WhatsappSettingMaxImageSize {
		return response, pkgError.ValidationError("image: exceeds the maximum allowed size")
	}

	// WhatsApp rejects webp as a regular image, convert to PNG first.
	if http.DetectContentType(imageData) == "image/webp" {
		webpImage, err := imaging.Decode(bytes.NewReader(imageData))
		if err != nil {
			return response, pkgError.InternalServerError(fmt.Sprintf("failed to decode WebP image %v", err))
		}
		var pngBuffer bytes.Buffer
		if err = imaging.Encode(&pngBuffer, webpImage, imaging.PNG); err != nil {
			return response, pkgError.InternalServerError(fmt.Sprintf("failed to convert WebP to PNG %v", err))
		}
		imageData = pngBuffer.Bytes()
	}

	thumbnail, err := buildThumbnail(imageData)
	if err != nil {
		logrus.Warnf("[SEND] Failed to build thumbnail: %v", err)
	}

	uploaded, err := client.Upload(ctx, imageData, whatsmeow.MediaImage)
	if err != nil {
		return response, pkgError.InternalServerError(fmt.Sprintf("failed to upload image %v", err))
	}

	msg := &waE2E.Message{
		ImageMessage: &waE2E.ImageMessage{
			Caption:       proto.String(request.Caption),
			Mimetype:      proto.String(http.DetectContentType(imageData)),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			JPEGThumbnail: thumbnail,
			ViewOnce:      proto.Bool(request.ViewOnce),
		},
	}

	resp, err := client.SendMessage(ctx, recipient, msg)
	if err != nil {
		return response, err
	}

	service.storeSentMessage(resp.ID, recipient, request.Caption, resp.Timestamp)

	response.MessageID = resp.ID
	response.Status = fmt.Sprintf("Image sent to %s (server timestamp: %s)", recipient, resp.Timestamp.String())
	return response, nil
}

func (service serviceSend) SendFile(ctx context.Context, request domainSend.FileRequest) (response domainSend.GenericResponse, err error) {
	if err = validations.ValidateSendFile(ctx, request); err != nil {
		return response, err
	}

	client, err := service.client()
	if err != nil {
		return response, err
	}
	recipient, err := resolveRecipient(request.Phone)
	if err != nil {
		return response, err
	}

	fileData, contentType, err := pkgUtils.DownloadFileFromURL(request.FileURL)
	if err != nil {
		return response, pkgError.InternalServerError(fmt.Sprintf("failed to download file from URL %v", err))
	}
	if contentType == "" {
		contentType = http.DetectContentType(fileData)
	}

	uploaded, err := client.Upload(ctx, fileData, whatsmeow.MediaDocument)
	if err != nil {
		return response, pkgError.InternalServerError(fmt.Sprintf("failed to upload file %v", err))
	}

	fileName := request.FileName
	if fileName == "" {
		fileName = "file"
	}

	msg := &waE2E.Message{
		DocumentMessage: &waE2E.DocumentMessage{
			FileName:      proto.String(fileName),
			Caption:       proto.String(request.Caption),
			Mimetype:      proto.String(contentType),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
		},
	}

	resp, err := client.SendMessage(ctx, recipient, msg)
	if err != nil {
		return response, err
	}

	service.storeSentMessage(resp.ID, recipient, request.Caption, resp.Timestamp)

	response.MessageID = resp.ID
	response.Status = fmt.Sprintf("File sent to %s (server timestamp: %s)", recipient, resp.Timestamp.String())
	return response, nil
}

func (service serviceSend) SendSticker(ctx context.Context, request domainSend.StickerRequest) (response domainSend.GenericResponse, err error) {
	if err = validations.ValidateSendSticker(ctx, request); err != nil {
		return response, err
	}

	client, err := service.client()
	if err != nil {
		return response, err
	}
	recipient, err := resolveRecipient(request.Phone)
	if err != nil {
		return response, err
	}

	stickerData, _, err := pkgUtils.DownloadFileFromURL(request.StickerURL)
	if err != nil {
		return response, pkgError.InternalServerError(fmt.Sprintf("failed to download sticker from URL %v", err))
	}
	if http.DetectContentType(stickerData) != "image/webp" {
		return response, pkgError.ValidationError("sticker_url: must point to a webp image")
	}

	uploaded, err := client.Upload(ctx, stickerData, whatsmeow.MediaImage)
	if err != nil {
		return response, pkgError.InternalServerError(fmt.Sprintf("failed to upload sticker %v", err))
	}

	msg := &waE2E.Message{
		StickerMessage: &waE2E.StickerMessage{
			Mimetype:      proto.String("image/webp"),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
		},
	}

	resp, err := client.SendMessage(ctx, recipient, msg)
	if err != nil {
		return response, err
	}

	service.storeSentMessage(resp.ID, recipient, "", resp.Timestamp)

	response.MessageID = resp.ID
	response.Status = fmt.Sprintf("Sticker sent to %s (server timestamp: %s)", recipient, resp.Timestamp.String())
	return response, nil
}

func (service serviceSend) SendLocation(ctx context.Context, request domainSend.LocationRequest) (response domainSend.GenericResponse, err error) {
	if err = validations.ValidateSendLocation(ctx, request); err != nil {
		return response, err
	}

	client, err := service.client()
	if err != nil {
		return response, err
	}
	recipient, err := resolveRecipient(request.Phone)
	if err != nil {
		return response, err
	}

	latitude, err := strconv.ParseFloat(request.Latitude, 64)
	if err != nil {
		return response, pkgError.ValidationError("latitude: must be a valid coordinate")
	}
	longitude, err := strconv.ParseFloat(request.Longitude, 64)
	if err != nil {
		return response, pkgError.ValidationError("longitude: must be a valid coordinate")
	}

	msg := &waE2E.Message{
		LocationMessage: &waE2E.LocationMessage{
			DegreesLatitude:  proto.Float64(latitude),
			DegreesLongitude: proto.Float64(longitude),
		},
	}

	resp, err := client.SendMessage(ctx, recipient, msg)
	if err != nil {
		return response, err
	}

	service.storeSentMessage(resp.ID, recipient, fmt.Sprintf("%v, %v", latitude, longitude), resp.Timestamp)

	response.MessageID = resp.ID
	response.Status = fmt.Sprintf("Location sent to %s (server timestamp: %s)", recipient, resp.Timestamp.String())
	return response, nil
}

// buildThumbnail renders a small JPEG preview embedded in the outbound
// message.
func buildThumbnail(imageData []byte) ([]byte, error) {
	srcImage, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, err
	}
	resized := imaging.Resize(srcImage, 100, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
