package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/mealledger/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.WhatsAppConfig{
		AccessToken:   "token-123",
		PhoneNumberID: "555",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
	})
	c.httpClient.SetRetryCount(0)
	return c
}

func TestSendTextMessage(t *testing.T) {
	var payload map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/555/messages", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	})

	resp, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "919800000001", Body: "hello"})
	require.NoError(t, err)

	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.1", resp.Messages[0].ID)
	assert.Equal(t, "whatsapp", payload["messaging_product"])
	assert.Equal(t, "919800000001", payload["to"])
	assert.Equal(t, "hello", payload["text"].(map[string]any)["body"])
}

func TestSendTextMessageTruncatesLongBody(t *testing.T) {
	var payload struct {
		Text struct {
			Body string `json:"body"`
		} `json:"text"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[]}`))
	})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: strings.Repeat("a", maxBodyLength+10)})
	require.NoError(t, err)

	assert.Len(t, payload.Text.Body, maxBodyLength)
}

func TestTruncateRunesKeepsMultibyteText(t *testing.T) {
	tamil := strings.Repeat("ப", maxBodyLength+50)

	got := truncateRunes(tamil, maxBodyLength)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxBodyLength, utf8.RuneCountInString(got))
	assert.Equal(t, "மதிய உணவு", truncateRunes("மதிய உணவு", maxBodyLength))
}

func TestSendTextMessageSendsValidUTF8(t *testing.T) {
	var payload struct {
		Text struct {
			Body string `json:"body"`
		} `json:"text"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[]}`))
	})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: strings.Repeat("ப", 2000)})
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("ப", 2000), payload.Text.Body)
}

func TestSendTextMessageAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid recipient","code":131030}}`))
	})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=131030")
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestSendTextMessageRequiresRecipient(t *testing.T) {
	c := NewClient(config.WhatsAppConfig{BaseURL: "http://127.0.0.1", APIVersion: "v20.0"})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{Body: "x"})

	assert.Error(t, err)
}
