package whatsapp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"github.com/knd27/kn-whatsapp-gateway/domains/gateway"
)

func setOwnNumber(t *testing.T, number string) {
	t.Helper()
	ownNumberMu.Lock()
	previous := ownNumber
	ownNumber = number
	ownNumberMu.Unlock()
	t.Cleanup(func() {
		ownNumberMu.Lock()
		ownNumber = previous
		ownNumberMu.Unlock()
	})
}

func newEvent(chat, sender types.JID, msg *waE2E.Message) *events.Message {
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:   chat,
				Sender: sender,
			},
			ID:        "3EB0TEST01",
			PushName:  "Alice",
			Timestamp: time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
		},
		Message: msg,
	}
}

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  *waE2E.Message
		want string
	}{
		{"conversation", &waE2E.Message{Conversation: proto.String("hi")}, gateway.KindConversation},
		{"extended text", &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("hi")}}, gateway.KindExtendedText},
		{"image", &waE2E.Message{ImageMessage: &waE2E.ImageMessage{}}, gateway.KindImage},
		{"video", &waE2E.Message{VideoMessage: &waE2E.VideoMessage{}}, gateway.KindVideo},
		{"document", &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{}}, gateway.KindDocument},
		{"audio", &waE2E.Message{AudioMessage: &waE2E.AudioMessage{}}, gateway.KindAudio},
		{"sticker", &waE2E.Message{StickerMessage: &waE2E.StickerMessage{}}, gateway.KindSticker},
		{"location", &waE2E.Message{LocationMessage: &waE2E.LocationMessage{}}, gateway.KindLocation},
		{"empty", &waE2E.Message{}, gateway.KindUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyMessage(tc.msg))
		})
	}
}

func TestUnwrapViewOnce(t *testing.T) {
	inner := &waE2E.Message{Conversation: proto.String("secret")}
	wrapped := &waE2E.Message{
		ViewOnceMessage: &waE2E.FutureProofMessage{Message: inner},
	}

	assert.Equal(t, gateway.KindConversation, classifyMessage(unwrapMessage(wrapped)))
}

func TestNormalizeConversation(t *testing.T) {
	setOwnNumber(t, "628999")

	evt := newEvent(
		types.NewJID("628111", types.DefaultUserServer),
		types.NewJID("628111", types.DefaultUserServer),
		&waE2E.Message{Conversation: proto.String("hello there")},
	)

	normalized := normalizeMessage(context.Background(), nil, evt)

	assert.Equal(t, gateway.EventMessage, normalized.Event)
	assert.Equal(t, "3EB0TEST01", normalized.MessageID)
	assert.False(t, normalized.FromMe)
	assert.False(t, normalized.IsGroup)
	assert.Nil(t, normalized.GroupJID)
	assert.Equal(t, "628111@s.whatsapp.net", normalized.RemoteJID)
	assert.Equal(t, "Alice", normalized.PushName)
	assert.Equal(t, "2026-08-28T10:30:00Z", normalized.Timestamp)
	assert.Equal(t, gateway.KindConversation, normalized.MessageType)
	assert.False(t, normalized.HasMedia)
	require.NotNil(t, normalized.From)
	assert.Equal(t, "628111", *normalized.From)
	require.NotNil(t, normalized.Text)
	assert.Equal(t, "hello there", *normalized.Text)
}

func TestNormalizeGroupMessage(t *testing.T) {
	setOwnNumber(t, "628999")

	evt := newEvent(
		types.NewJID("120363041234567890", types.GroupServer),
		types.NewJID("628333", types.DefaultUserServer),
		&waE2E.Message{Conversation: proto.String("group hello")},
	)

	normalized := normalizeMessage(context.Background(), nil, evt)

	assert.True(t, normalized.IsGroup)
	require.NotNil(t, normalized.GroupJID)
	assert.Equal(t, "120363041234567890@g.us", *normalized.GroupJID)
	require.NotNil(t, normalized.From)
	assert.Equal(t, "628333", *normalized.From)
}

func TestNormalizeOwnMessageUsesOwnNumber(t *testing.T) {
	setOwnNumber(t, "628999")

	evt := newEvent(
		types.NewJID("628111", types.DefaultUserServer),
		types.NewJID("628999", types.DefaultUserServer),
		&waE2E.Message{Conversation: proto.String("mine")},
	)
	evt.Info.IsFromMe = true

	normalized := normalizeMessage(context.Background(), nil, evt)

	assert.True(t, normalized.FromMe)
	require.NotNil(t, normalized.From)
	assert.Equal(t, "628999", *normalized.From)
}

func TestNormalizeQuotedReply(t *testing.T) {
	setOwnNumber(t, "628999")

	evt := newEvent(
		types.NewJID("628111", types.DefaultUserServer),
		types.NewJID("628111", types.DefaultUserServer),
		&waE2E.Message{
			ExtendedTextMessage: &waE2E.ExtendedTextMessage{
				Text: proto.String("replying"),
				ContextInfo: &waE2E.ContextInfo{
					StanzaID:      proto.String("3EB0ORIGINAL"),
					Participant:   proto.String("628222@s.whatsapp.net"),
					QuotedMessage: &waE2E.Message{Conversation: proto.String("original text")},
				},
			},
		},
	)

	normalized := normalizeMessage(context.Background(), nil, evt)

	require.NotNil(t, normalized.QuotedMessage)
	assert.Equal(t, "3EB0ORIGINAL", normalized.QuotedMessage.MessageID)
	assert.Equal(t, "628222", normalized.QuotedMessage.Participant)
	assert.Equal(t, "original text", normalized.QuotedMessage.Text)
	require.NotNil(t, normalized.Text)
	assert.Equal(t, "replying", *normalized.Text)
}

func TestNormalizeLocationSynthesizesText(t *testing.T) {
	setOwnNumber(t, "628999")

	evt := newEvent(
		types.NewJID("628111", types.DefaultUserServer),
		types.NewJID("628111", types.DefaultUserServer),
		&waE2E.Message{
			LocationMessage: &waE2E.LocationMessage{
				DegreesLatitude:  proto.Float64(-6.2),
				DegreesLongitude: proto.Float64(106.8),
				Name:             proto.String("Monas"),
				Address:          proto.String("Jakarta"),
			},
		},
	)

	normalized := normalizeMessage(context.Background(), nil, evt)

	assert.Equal(t, gateway.KindLocation, normalized.MessageType)
	require.NotNil(t, normalized.Location)
	assert.Equal(t, -6.2, normalized.Location.Latitude)
	assert.Equal(t, 106.8, normalized.Location.Longitude)
	require.NotNil(t, normalized.Text)
	assert.Equal(t, "[share location] \nMonas\n-6.2, 106.8", *normalized.Text)
}

func TestNormalizeDocumentCarriesFileNameAndCaption(t *testing.T) {
	setOwnNumber(t, "628999")

	evt := newEvent(
		types.NewJID("628111", types.DefaultUserServer),
		types.NewJID("628111", types.DefaultUserServer),
		&waE2E.Message{
			DocumentMessage: &waE2E.DocumentMessage{
				FileName: proto.String("report.pdf"),
				Caption:  proto.String("monthly report"),
				Mimetype: proto.String("application/pdf"),
			},
		},
	)

	normalized := normalizeMessage(context.Background(), nil, evt)

	assert.Equal(t, gateway.KindDocument, normalized.MessageType)
	assert.False(t, normalized.HasMedia)
	assert.Nil(t, normalized.Media)
	assert.Equal(t, "report.pdf", normalized.FileName)
	assert.Equal(t, "monthly report", normalized.Caption)
	require.NotNil(t, normalized.Text)
	assert.Equal(t, "monthly report", *normalized.Text)
}

func TestNormalizeCaptionBecomesPrimaryText(t *testing.T) {
	setOwnNumber(t, "628999")

	evt := newEvent(
		types.NewJID("628111", types.DefaultUserServer),
		types.NewJID("628111", types.DefaultUserServer),
		&waE2E.Message{
			ImageMessage: &waE2E.ImageMessage{
				Caption:  proto.String("look at this"),
				Mimetype: proto.String("image/jpeg"),
			},
		},
	)

	normalized := normalizeMessage(context.Background(), nil, evt)

	assert.Equal(t, gateway.KindImage, normalized.MessageType)
	assert.Equal(t, "look at this", normalized.Caption)
	require.NotNil(t, normalized.Text)
	assert.Equal(t, "look at this", *normalized.Text)
}

func TestNormalizeQuotedParticipantUnresolvable(t *testing.T) {
	setOwnNumber(t, "628999")

	evt := newEvent(
		types.NewJID("628111", types.DefaultUserServer),
		types.NewJID("628111", types.DefaultUserServer),
		&waE2E.Message{
			ExtendedTextMessage: &waE2E.ExtendedTextMessage{
				Text: proto.String("replying"),
				ContextInfo: &waE2E.ContextInfo{
					StanzaID:      proto.String("3EB0ORIGINAL"),
					Participant:   proto.String("120363041234567890@g.us"),
					QuotedMessage: &waE2E.Message{Conversation: proto.String("original text")},
				},
			},
		},
	)

	normalized := normalizeMessage(context.Background(), nil, evt)

	require.NotNil(t, normalized.QuotedMessage)
	assert.Equal(t, "", normalized.QuotedMessage.Participant)
}

func TestNormalizeStatusBroadcastTaggedAsStatus(t *testing.T) {
	setOwnNumber(t, "628999")

	evt := newEvent(
		types.StatusBroadcastJID,
		types.NewJID("628111", types.DefaultUserServer),
		&waE2E.Message{Conversation: proto.String("my status")},
	)

	normalized := normalizeMessage(context.Background(), nil, evt)

	assert.Equal(t, gateway.EventStatus, normalized.Event)
	assert.Equal(t, "status@broadcast", normalized.RemoteJID)
}
