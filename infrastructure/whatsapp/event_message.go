package whatsapp

import (
	"context"
	"fmt"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/knd27/kn-whatsapp-gateway/config"
	"github.com/knd27/kn-whatsapp-gateway/domains/gateway"
	"github.com/knd27/kn-whatsapp-gateway/pkg/identity"
)

// unwrapMessage peels view-once and ephemeral wrappers so classification sees
// the real content. Wrappers can nest, hence the bounded loop.
func unwrapMessage(msg *waE2E.Message) *waE2E.Message {
	unwrap := func(m *waE2E.Message) *waE2E.Message {
		if v := m.GetViewOnceMessage(); v != nil {
			return v.GetMessage()
		}
		if v := m.GetEphemeralMessage(); v != nil {
			return v.GetMessage()
		}
		if v := m.GetViewOnceMessageV2(); v != nil {
			return v.GetMessage()
		}
		if v := m.GetViewOnceMessageV2Extension(); v != nil {
			return v.GetMessage()
		}
		return nil
	}
	for i := 0; i < 3; i++ {
		if next := unwrap(msg); next != nil {
			msg = next
		} else {
			break
		}
	}
	return msg
}

// classifyMessage maps the populated protocol field to a message kind. The
// first match wins; a message never carries two content fields at once.
func classifyMessage(msg *waE2E.Message) string {
	switch {
	case msg.GetConversation() != "":
		return gateway.KindConversation
	case msg.GetExtendedTextMessage() != nil:
		return gateway.KindExtendedText
	case msg.GetImageMessage() != nil:
		return gateway.KindImage
	case msg.GetVideoMessage() != nil:
		return gateway.KindVideo
	case msg.GetDocumentMessage() != nil:
		return gateway.KindDocument
	case msg.GetAudioMessage() != nil:
		return gateway.KindAudio
	case msg.GetStickerMessage() != nil:
		return gateway.KindSticker
	case msg.GetLocationMessage() != nil:
		return gateway.KindLocation
	default:
		return gateway.KindUnknown
	}
}

// contextInfoOf returns the context info of whichever content field carries
// one, used to surface reply references.
func contextInfoOf(msg *waE2E.Message) *waE2E.ContextInfo {
	if m := msg.GetExtendedTextMessage(); m != nil {
		return m.GetContextInfo()
	}
	if m := msg.GetImageMessage(); m != nil {
		return m.GetContextInfo()
	}
	if m := msg.GetVideoMessage(); m != nil {
		return m.GetContextInfo()
	}
	if m := msg.GetDocumentMessage(); m != nil {
		return m.GetContextInfo()
	}
	if m := msg.GetAudioMessage(); m != nil {
		return m.GetContextInfo()
	}
	if m := msg.GetStickerMessage(); m != nil {
		return m.GetContextInfo()
	}
	if m := msg.GetLocationMessage(); m != nil {
		return m.GetContextInfo()
	}
	return nil
}

// quotedSummary flattens a reply reference to its identity plus a text
// preview. Quoted media never survives normalization, only its caption.
func quotedSummary(ci *waE2E.ContextInfo) *gateway.QuotedMessage {
	if ci == nil || ci.GetQuotedMessage() == nil {
		return nil
	}

	quoted := unwrapMessage(ci.GetQuotedMessage())
	text := quoted.GetConversation()
	if text == "" {
		text = quoted.GetExtendedTextMessage().GetText()
	}
	if text == "" {
		text = mediaCaption(quoted)
	}

	return &gateway.QuotedMessage{
		MessageID:   ci.GetStanzaID(),
		Participant: identity.CanonicalNumber(ci.GetParticipant()),
		Text:        text,
	}
}

func mediaCaption(msg *waE2E.Message) string {
	if m := msg.GetImageMessage(); m != nil {
		return m.GetCaption()
	}
	if m := msg.GetVideoMessage(); m != nil {
		return m.GetCaption()
	}
	if m := msg.GetDocumentMessage(); m != nil {
		return m.GetCaption()
	}
	return ""
}

// locationText renders a location share the way text-only consumers expect it.
func locationText(loc *waE2E.LocationMessage) string {
	name := loc.GetName()
	if name == "" {
		name = loc.GetAddress()
	}
	return fmt.Sprintf("[share location] \n%s\n%v, %v", name, loc.GetDegreesLatitude(), loc.GetDegreesLongitude())
}

// normalizeMessage flattens an inbound event into the wire shape forwarded to
// webhook consumers. Media acquisition happens here so the descriptor rides
// along in the same payload.
func normalizeMessage(ctx context.Context, client *whatsmeow.Client, evt *events.Message) *gateway.NormalizedMessage {
	msg := unwrapMessage(evt.Message)
	kind := classifyMessage(msg)

	remoteJID := evt.Info.Chat.String()
	isGroup := evt.Info.Chat.Server == types.GroupServer

	event := gateway.EventMessage
	if evt.Info.Chat == types.StatusBroadcastJID {
		event = gateway.EventStatus
	}

	normalized := &gateway.NormalizedMessage{
		Event:       event,
		MessageID:   evt.Info.ID,
		FromMe:      evt.Info.IsFromMe,
		RemoteJID:   remoteJID,
		PushName:    evt.Info.PushName,
		IsGroup:     isGroup,
		Timestamp:   evt.Info.Timestamp.UTC().Format(time.RFC3339),
		MessageType: kind,
	}

	if isGroup {
		normalized.GroupJID = &remoteJID
	}
	if from := identity.ResolveSenderNumber(&evt.Info, GetOwnNumber()); from != "" {
		normalized.From = &from
	}

	var text string
	switch kind {
	case gateway.KindConversation:
		text = msg.GetConversation()
	case gateway.KindExtendedText:
		text = msg.GetExtendedTextMessage().GetText()
	case gateway.KindLocation:
		loc := msg.GetLocationMessage()
		text = locationText(loc)
		normalized.Location = &gateway.LocationInfo{
			Latitude:  loc.GetDegreesLatitude(),
			Longitude: loc.GetDegreesLongitude(),
			Name:      loc.GetName(),
			Address:   loc.GetAddress(),
		}
	}

	normalized.Caption = mediaCaption(msg)
	if text == "" {
		text = normalized.Caption
	}
	if text != "" {
		normalized.Text = &text
	}

	if doc := msg.GetDocumentMessage(); doc != nil {
		normalized.FileName = doc.GetFileName()
	}
	normalized.QuotedMessage = quotedSummary(contextInfoOf(msg))

	if downloadable, declaredMime := downloadableContent(msg); downloadable != nil {
		if config.WhatsappAutoDownloadMedia && client != nil {
			media, err := extractMedia(ctx, client, &evt.Info, downloadable, declaredMime)
			if err != nil {
				log.Errorf("Failed to download media for %s: %v", evt.Info.ID, err)
			} else if media != nil {
				normalized.HasMedia = true
				normalized.Media = media
			}
		}
	}

	return normalized
}

// downloadableContent returns the auto-acquired media part of the message, if
// any, together with the MIME type the sender declared. Audio and sticker
// payloads are deliberately left out: they are classified but never fetched.
func downloadableContent(msg *waE2E.Message) (whatsmeow.DownloadableMessage, string) {
	if m := msg.GetImageMessage(); m != nil {
		return m, m.GetMimetype()
	}
	if m := msg.GetVideoMessage(); m != nil {
		return m, m.GetMimetype()
	}
	if m := msg.GetDocumentMessage(); m != nil {
		return m, m.GetMimetype()
	}
	return nil, ""
}
