package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

func TestLabelRender(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/labels", r.URL.Path)

		var req labelRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42), req.OrderID)
		assert.Equal(t, "sender", req.OrderType)
		assert.Equal(t, "120x75", req.LabelSize)

		json.NewEncoder(w).Encode(labelResponse{
			PDF:      base64.StdEncoding.EncodeToString(pdf),
			Filename: "label_42.pdf",
		})
	}))
	defer srv.Close()

	s := NewLabels(srv.URL)
	got, filename, err := s.Render(context.Background(), 42, domain.OrderTypeSender, "120x75")
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
	assert.Equal(t, "label_42.pdf", filename)
}

func TestLabelRenderServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(labelResponse{Error: "unknown label size"})
	}))
	defer srv.Close()

	s := NewLabels(srv.URL)
	_, _, err := s.Render(context.Background(), 42, domain.OrderTypeSender, "10x10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown label size")
}

func TestLabelsEnabled(t *testing.T) {
	assert.False(t, NewLabels("").Enabled())
	assert.True(t, NewLabels("http://localhost:9000").Enabled())
}
