// Package identity resolves WhatsApp JIDs into bare phone numbers.
package identity

import (
	"regexp"
	"strings"

	"go.mau.fi/whatsmeow/types"
)

const personalServerSuffix = "@" + types.DefaultUserServer

var digitsOnly = regexp.MustCompile(`^\d+$`)

// CanonicalNumber reduces a JID string to its bare phone number. Multi-device
// JIDs may carry a comma separated list and a :device suffix; only the first
// entry counts. Returns "" when the result is not purely numeric, so group,
// lid and broadcast JIDs never leak through as numbers.
func CanonicalNumber(jid string) string {
	if jid == "" {
		return ""
	}

	number := jid
	if idx := strings.Index(number, ","); idx >= 0 {
		number = number[:idx]
	}
	if idx := strings.Index(number, "@"); idx >= 0 {
		number = number[:idx]
	}
	if idx := strings.Index(number, ":"); idx >= 0 {
		number = number[:idx]
	}
	number = strings.TrimSpace(number)

	if !digitsOnly.MatchString(number) {
		return ""
	}
	return number
}

// IsPersonalJID reports whether the JID addresses a personal account rather
// than a group, lid or broadcast endpoint.
func IsPersonalJID(jid string) bool {
	return strings.HasSuffix(jid, personalServerSuffix)
}

// ResolveSenderNumber determines the bare phone number of whoever authored a
// message. Own messages map to the connected account's number; for everything
// else the source JIDs are probed in a fixed order and only personal-server
// entries are eligible. Returns "" when no candidate yields a number.
func ResolveSenderNumber(info *types.MessageInfo, ownNumber string) string {
	if info.IsFromMe {
		return ownNumber
	}

	candidates := []types.JID{
		info.Chat,
		info.Sender,
		info.SenderAlt,
		info.RecipientAlt,
	}
	for _, jid := range candidates {
		if jid.IsEmpty() {
			continue
		}
		full := jid.String()
		if !IsPersonalJID(full) {
			continue
		}
		if number := CanonicalNumber(full); number != "" {
			return number
		}
	}
	return ""
}
