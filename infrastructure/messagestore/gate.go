package messagestore

import (
	"encoding/json"

	"github.com/knd27/kn-whatsapp-gateway/domains/gateway"
	"github.com/knd27/kn-whatsapp-gateway/domains/storage"
	"github.com/knd27/kn-whatsapp-gateway/pkg/identity"
)

// BuildStorable applies the persistence gate to a normalized message and, when
// it passes, shapes the row to insert. The gate drops stickers, contentless
// messages, own messages whose recipient cannot be resolved, and inbound
// messages whose sender cannot be resolved. Own messages are stored with a
// NULL sender so sent and received history stay separable no matter which
// number the session reports for itself.
func BuildStorable(msg *gateway.NormalizedMessage, ownNumber string) (*storage.StoredMessage, bool) {
	if msg.MessageType == gateway.KindSticker {
		return nil, false
	}

	text := msg.Text
	if (text == nil || *text == "") && msg.Media == nil {
		return nil, false
	}

	selfSent := msg.FromMe ||
		(ownNumber != "" && msg.From != nil && *msg.From == ownNumber)

	var senderNumber, toNumber *string
	if selfSent {
		// Own messages need an addressable counterpart; without one the row
		// would be ambiguous noise. Stored with a NULL sender so sent and
		// received history stay separable.
		recipient := identity.CanonicalNumber(msg.RemoteJID)
		if recipient == "" {
			return nil, false
		}
		toNumber = &recipient
	} else {
		// A NULL sender marks a row as outgoing; an inbound message whose
		// sender never resolved must not masquerade as one.
		if msg.From == nil || *msg.From == "" {
			return nil, false
		}
		senderNumber = msg.From
	}

	var media *string
	if msg.Media != nil {
		if encoded, err := json.Marshal(msg.Media); err == nil {
			blob := string(encoded)
			media = &blob
		}
	}

	return &storage.StoredMessage{
		MessageID:    msg.MessageID,
		Timestamp:    msg.Timestamp,
		SenderNumber: senderNumber,
		ToNumber:     toNumber,
		RemoteJID:    msg.RemoteJID,
		PushName:     msg.PushName,
		Text:         text,
		Media:        media,
	}, true
}
