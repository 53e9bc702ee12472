package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/config"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

// Labels renders pallet label PDFs through the external label service.
type Labels struct {
	baseURL    string
	httpClient *http.Client
}

func NewLabels(baseURL string) *Labels {
	return &Labels{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: config.LabelRenderTimeout},
	}
}

// Enabled reports whether a label service is configured at all.
func (s *Labels) Enabled() bool {
	return s.baseURL != ""
}

type labelRequest struct {
	OrderID   int64  `json:"order_id"`
	OrderType string `json:"order_type"`
	LabelSize string `json:"label_size"`
}

type labelResponse struct {
	PDF      string `json:"pdf"`
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// Render requests a PDF label for the order and returns the decoded bytes
// together with a filename suitable for sending as a document.
func (s *Labels) Render(ctx context.Context, orderID int64, orderType domain.OrderType, size string) ([]byte, string, error) {
	payload, err := json.Marshal(labelRequest{
		OrderID:   orderID,
		OrderType: string(orderType),
		LabelSize: size,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/labels", bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("label request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	var labelResp labelResponse
	if err := json.Unmarshal(body, &labelResp); err != nil {
		return nil, "", fmt.Errorf("parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if labelResp.Error != "" {
			return nil, "", fmt.Errorf("label service: %s", labelResp.Error)
		}
		return nil, "", fmt.Errorf("label service returned %d", resp.StatusCode)
	}

	pdf, err := base64.StdEncoding.DecodeString(labelResp.PDF)
	if err != nil {
		return nil, "", fmt.Errorf("decode pdf: %w", err)
	}

	filename := labelResp.Filename
	if filename == "" {
		filename = fmt.Sprintf("label_%d.pdf", orderID)
	}
	return pdf, filename, nil
}
