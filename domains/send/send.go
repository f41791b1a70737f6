package send

import "context"

type ISendUsecase interface {
	SendText(ctx context.Context, request MessageRequest) (response GenericResponse, err error)
	SendImage(ctx context.Context, request ImageRequest) (response GenericResponse, err error)
	SendFile(ctx context.Context, request FileRequest) (response GenericResponse, err error)
	SendSticker(ctx context.Context, request StickerRequest) (response GenericResponse, err error)
	SendLocation(ctx context.Context, request LocationRequest) (response GenericResponse, err error)
}

type GenericResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

type MessageRequest struct {
	Phone   string `json:"phone" form:"phone"`
	Message string `json:"message" form:"message"`

	// ReplyMessageID quotes an earlier message when set.
	ReplyMessageID string `json:"reply_message_id,omitempty" form:"reply_message_id"`
}

type ImageRequest struct {
	Phone    string `json:"phone" form:"phone"`
	Caption  string `json:"caption" form:"caption"`
	ImageURL string `json:"image_url" form:"image_url"`
	ViewOnce bool   `json:"view_once" form:"view_once"`
}

type FileRequest struct {
	Phone    string `json:"phone" form:"phone"`
	Caption  string `json:"caption" form:"caption"`
	FileURL  string `json:"file_url" form:"file_url"`
	FileName string `json:"file_name" form:"file_name"`
}

type StickerRequest struct {
	Phone      string `json:"phone" form:"phone"`
	StickerURL string `json:"sticker_url" form:"sticker_url"`
}

type LocationRequest struct {
	Phone     string `json:"phone" form:"phone"`
	Latitude  string `json:"latitude" form:"latitude"`
	Longitude string `json:"longitude" form:"longitude"`
}
