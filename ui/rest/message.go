package rest

import (
	"github.com/gofiber/fiber/v2"

	domainMessage "github.com/knd27/kn-whatsapp-gateway/domains/message"
	"github.com/knd27/kn-whatsapp-gateway/pkg/utils"
)

type Message struct {
	Service domainMessage.IMessageUsecase
}

func InitRestMessage(app fiber.Router, service domainMessage.IMessageUsecase) Message {
	rest := Message{Service: service}
	app.Get("/messages/inbox", rest.Inbox)
	app.Get("/messages/sent", rest.Sent)
	app.Get("/messages/:message_id", rest.ByMessageID)
	app.Get("/media/:message_id", rest.Media)

	return rest
}

func historyRequestFromQuery(c *fiber.Ctx) domainMessage.HistoryRequest {
	return domainMessage.HistoryRequest{
		Number: c.Query("number"),
		Limit:  c.QueryInt("limit"),
	}
}

func (controller *Message) Inbox(c *fiber.Ctx) error {
	messages, err := controller.Service.Inbox(c.UserContext(), historyRequestFromQuery(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Inbox retrieved",
		Results: messages,
	})
}

func (controller *Message) Sent(c *fiber.Ctx) error {
	messages, err := controller.Service.Sent(c.UserContext(), historyRequestFromQuery(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Sent messages retrieved",
		Results: messages,
	})
}

func (controller *Message) ByMessageID(c *fiber.Ctx) error {
	message, err := controller.Service.ByMessageID(c.UserContext(), c.Params("message_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Message retrieved",
		Results: message,
	})
}

// Media streams the stored media file of a message back to the caller.
func (controller *Message) Media(c *fiber.Ctx) error {
	path, err := controller.Service.MediaPath(c.UserContext(), c.Params("message_id"))
	utils.PanicIfNeeded(err)

	return c.SendFile(path)
}
