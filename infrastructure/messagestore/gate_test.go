package messagestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knd27/kn-whatsapp-gateway/domains/gateway"
)

func strPtr(s string) *string { return &s }

func baseMessage() *gateway.NormalizedMessage {
	return &gateway.NormalizedMessage{
		Event:       gateway.EventMessage,
		MessageID:   "3EB0ABC123",
		RemoteJID:   "628111@s.whatsapp.net",
		PushName:    "Alice",
		Timestamp:   "2026-08-28T10:00:00Z",
		MessageType: gateway.KindConversation,
		From:        strPtr("628111"),
		Text:        strPtr("hello"),
	}
}

func TestGateDropsStickers(t *testing.T) {
	msg := baseMessage()
	msg.MessageType = gateway.KindSticker
	msg.Media = &gateway.MediaDescriptor{FileName: "3EB0ABC123.webp"}

	row, ok := BuildStorable(msg, "628999")
	assert.False(t, ok)
	assert.Nil(t, row)
}

func TestGateDropsEmptyMessages(t *testing.T) {
	msg := baseMessage()
	msg.Text = nil

	row, ok := BuildStorable(msg, "628999")
	assert.False(t, ok)
	assert.Nil(t, row)
}

func TestGateKeepsMediaWithoutText(t *testing.T) {
	msg := baseMessage()
	msg.Text = nil
	msg.MessageType = gateway.KindImage
	msg.HasMedia = true
	msg.Media = &gateway.MediaDescriptor{
		FileName: "3EB0ABC123.jpg",
		MimeType: "image/jpeg",
		Size:     1024,
	}

	row, ok := BuildStorable(msg, "628999")
	require.True(t, ok)
	require.NotNil(t, row.Media)
	assert.Contains(t, *row.Media, "3EB0ABC123.jpg")
}

func TestGateDropsInboundWithoutSender(t *testing.T) {
	tests := []struct {
		name string
		from *string
	}{
		{"nil sender", nil},
		{"empty sender", strPtr("")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := baseMessage()
			msg.From = tc.from

			row, ok := BuildStorable(msg, "628999")
			assert.False(t, ok)
			assert.Nil(t, row)
		})
	}
}

func TestGateInboundKeepsSender(t *testing.T) {
	msg := baseMessage()

	row, ok := BuildStorable(msg, "628999")
	require.True(t, ok)
	require.NotNil(t, row.SenderNumber)
	assert.Equal(t, "628111", *row.SenderNumber)
	assert.Nil(t, row.ToNumber)
}

func TestGateOwnMessageRewritesSenderToNull(t *testing.T) {
	msg := baseMessage()
	msg.FromMe = true
	msg.From = strPtr("628999")

	row, ok := BuildStorable(msg, "628999")
	require.True(t, ok)
	assert.Nil(t, row.SenderNumber)
	require.NotNil(t, row.ToNumber)
	assert.Equal(t, "628111", *row.ToNumber)
}

func TestGateDropsOwnMessageWithoutRecipient(t *testing.T) {
	msg := baseMessage()
	msg.FromMe = true
	msg.RemoteJID = "status@broadcast"

	_, ok := BuildStorable(msg, "628999")
	assert.False(t, ok)
}

func TestGateSenderMatchingOwnNumberStoresAsSent(t *testing.T) {
	msg := baseMessage()
	msg.From = strPtr("628999")

	row, ok := BuildStorable(msg, "628999")
	require.True(t, ok)
	assert.Nil(t, row.SenderNumber)
	require.NotNil(t, row.ToNumber)
	assert.Equal(t, "628111", *row.ToNumber)
}
