package validations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainSend "github.com/knd27/kn-whatsapp-gateway/domains/send"
)

func TestValidateSendText(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, ValidateSendText(ctx, domainSend.MessageRequest{
		Phone:   "628111@s.whatsapp.net",
		Message: "hello",
	}))

	assert.Error(t, ValidateSendText(ctx, domainSend.MessageRequest{Message: "hello"}))
	assert.Error(t, ValidateSendText(ctx, domainSend.MessageRequest{Phone: "628111@s.whatsapp.net"}))
}

func TestValidateSendImage(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, ValidateSendImage(ctx, domainSend.ImageRequest{
		Phone:    "628111@s.whatsapp.net",
		ImageURL: "https://example.com/cat.jpg",
	}))

	assert.Error(t, ValidateSendImage(ctx, domainSend.ImageRequest{
		Phone:    "628111@s.whatsapp.net",
		ImageURL: "not a url",
	}))
}

func TestValidateSendLocation(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, ValidateSendLocation(ctx, domainSend.LocationRequest{
		Phone:     "628111@s.whatsapp.net",
		Latitude:  "-6.2",
		Longitude: "106.8",
	}))

	assert.Error(t, ValidateSendLocation(ctx, domainSend.LocationRequest{
		Phone:     "628111@s.whatsapp.net",
		Latitude:  "not-a-float",
		Longitude: "106.8",
	}))
}

func TestValidateLoginWithCode(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, ValidateLoginWithCode(ctx, "6281234567890"))
	assert.Error(t, ValidateLoginWithCode(ctx, ""))
	assert.Error(t, ValidateLoginWithCode(ctx, "not-a-number"))
}
