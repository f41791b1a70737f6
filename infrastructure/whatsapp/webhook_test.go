package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knd27/kn-whatsapp-gateway/config"
	"github.com/knd27/kn-whatsapp-gateway/domains/gateway"
)

func setWebhookConfig(t *testing.T, urls []string, secret string) {
	t.Helper()
	prevURLs, prevSecret := config.WhatsappWebhook, config.WhatsappWebhookSecret
	config.WhatsappWebhook = urls
	config.WhatsappWebhookSecret = secret
	t.Cleanup(func() {
		config.WhatsappWebhook = prevURLs
		config.WhatsappWebhookSecret = prevSecret
	})
}

func overrideSubmit(t *testing.T, fn func(ctx context.Context, payload any, url string) error) {
	t.Helper()
	prev := submitWebhookFn
	submitWebhookFn = fn
	t.Cleanup(func() { submitWebhookFn = prev })
}

func TestForwardToWebhooksNoURLs(t *testing.T) {
	setWebhookConfig(t, nil, "")

	called := false
	overrideSubmit(t, func(ctx context.Context, payload any, url string) error {
		called = true
		return nil
	})

	err := forwardToWebhooks(context.Background(), gateway.EventMessage, map[string]any{})
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestForwardToWebhooksDeliversToAll(t *testing.T) {
	setWebhookConfig(t, []string{"http://a.example", "http://b.example", "http://c.example"}, "")

	var mu sync.Mutex
	delivered := make(map[string]bool)
	overrideSubmit(t, func(ctx context.Context, payload any, url string) error {
		mu.Lock()
		delivered[url] = true
		mu.Unlock()
		return nil
	})

	err := forwardToWebhooks(context.Background(), gateway.EventMessage, map[string]any{})
	require.NoError(t, err)
	assert.Len(t, delivered, 3)
}

func TestForwardToWebhooksPartialFailureIsNotAnError(t *testing.T) {
	setWebhookConfig(t, []string{"http://good.example", "http://bad.example"}, "")

	var mu sync.Mutex
	var attempted []string
	overrideSubmit(t, func(ctx context.Context, payload any, url string) error {
		mu.Lock()
		attempted = append(attempted, url)
		mu.Unlock()
		if url == "http://bad.example" {
			return errors.New("boom")
		}
		return nil
	})

	err := forwardToWebhooks(context.Background(), gateway.EventMessage, map[string]any{})
	assert.NoError(t, err, "partial failure must not fail the fan-out")
	assert.Len(t, attempted, 2, "failing target must not stop the others")
}

func TestForwardToWebhooksAllFailed(t *testing.T) {
	setWebhookConfig(t, []string{"http://a.example", "http://b.example"}, "")

	overrideSubmit(t, func(ctx context.Context, payload any, url string) error {
		return errors.New("boom")
	})

	err := forwardToWebhooks(context.Background(), gateway.EventMessage, map[string]any{})
	assert.Error(t, err)
}

func TestSubmitWebhookPostsJSON(t *testing.T) {
	setWebhookConfig(t, nil, "")

	var gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	payload := &gateway.NormalizedMessage{Event: gateway.EventMessage, MessageID: "MSG1"}
	err := submitWebhook(context.Background(), payload, server.URL)
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Contains(t, string(gotBody), `"messageId":"MSG1"`)
}

func TestSubmitWebhookSignsWhenSecretSet(t *testing.T) {
	setWebhookConfig(t, nil, "topsecret")

	var gotSignature string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Hub-Signature-256")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := submitWebhook(context.Background(), map[string]any{"event": "message"}, server.URL)
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("topsecret"))
	mac.Write(gotBody)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSignature)
}

func TestSubmitWebhookNon2xxIsError(t *testing.T) {
	setWebhookConfig(t, nil, "")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := submitWebhook(context.Background(), map[string]any{}, server.URL)
	assert.Error(t, err)
}
