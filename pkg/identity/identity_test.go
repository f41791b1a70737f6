package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mau.fi/whatsmeow/types"
)

func TestCanonicalNumber(t *testing.T) {
	tests := []struct {
		name string
		jid  string
		want string
	}{
		{"plain jid", "6281234567890@s.whatsapp.net", "6281234567890"},
		{"device suffix", "6281234567890:12@s.whatsapp.net", "6281234567890"},
		{"comma list keeps first", "628111,628222@s.whatsapp.net", "628111"},
		{"bare number", "6281234567890", "6281234567890"},
		{"empty", "", ""},
		{"group jid", "120363041234567890@g.us", "120363041234567890"},
		{"non numeric user", "abc123@s.whatsapp.net", ""},
		{"status broadcast", "status@broadcast", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanonicalNumber(tc.jid))
		})
	}
}

func TestIsPersonalJID(t *testing.T) {
	assert.True(t, IsPersonalJID("628111@s.whatsapp.net"))
	assert.False(t, IsPersonalJID("12036304@g.us"))
	assert.False(t, IsPersonalJID("628111@lid"))
	assert.False(t, IsPersonalJID("status@broadcast"))
}

func TestResolveSenderNumberFromMe(t *testing.T) {
	info := &types.MessageInfo{
		MessageSource: types.MessageSource{
			Chat:     types.NewJID("628222", types.DefaultUserServer),
			Sender:   types.NewJID("628111", types.DefaultUserServer),
			IsFromMe: true,
		},
	}
	assert.Equal(t, "628999", ResolveSenderNumber(info, "628999"))
}

func TestResolveSenderNumberDirectChat(t *testing.T) {
	info := &types.MessageInfo{
		MessageSource: types.MessageSource{
			Chat:   types.NewJID("628222", types.DefaultUserServer),
			Sender: types.NewJID("628222", types.DefaultUserServer),
		},
	}
	assert.Equal(t, "628222", ResolveSenderNumber(info, "628999"))
}

func TestResolveSenderNumberGroupFallsBackToSender(t *testing.T) {
	info := &types.MessageInfo{
		MessageSource: types.MessageSource{
			Chat:   types.NewJID("120363041234567890", types.GroupServer),
			Sender: types.NewJID("628333", types.DefaultUserServer),
		},
	}
	assert.Equal(t, "628333", ResolveSenderNumber(info, "628999"))
}

func TestResolveSenderNumberLidSenderUsesAlt(t *testing.T) {
	info := &types.MessageInfo{
		MessageSource: types.MessageSource{
			Chat:      types.NewJID("120363041234567890", types.GroupServer),
			Sender:    types.NewJID("99887766554433", types.HiddenUserServer),
			SenderAlt: types.NewJID("628444", types.DefaultUserServer),
		},
	}
	assert.Equal(t, "628444", ResolveSenderNumber(info, "628999"))
}

func TestResolveSenderNumberNoCandidate(t *testing.T) {
	info := &types.MessageInfo{
		MessageSource: types.MessageSource{
			Chat:   types.NewJID("status", types.BroadcastServer),
			Sender: types.NewJID("99887766554433", types.HiddenUserServer),
		},
	}
	assert.Equal(t, "", ResolveSenderNumber(info, "628999"))
}
