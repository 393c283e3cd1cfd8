package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTP talks to the annotation server:
//
//	GET  {base}/loadAnnotations/{fileId}  -> {"annotations": {...}}
//	POST {base}/saveAnnotations           <- {"file_id": ..., "annotations": {...}}
type HTTP struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTP returns a store for the server at baseURL.
func NewHTTP(baseURL string) *HTTP {
	return &HTTP{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type loadResponse struct {
	Annotations *Annotations `json:"annotations"`
}

type saveRequest struct {
	FileID      string       `json:"file_id"`
	Annotations *Annotations `json:"annotations"`
}

func (h *HTTP) Load(ctx context.Context, fileID string) (*Annotations, error) {
	endpoint := h.BaseURL + "/loadAnnotations/" + url.PathEscape(fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load request failed: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read load response: %w", err)
	}
	var out loadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse load response: %w", err)
	}
	if out.Annotations == nil {
		return nil, ErrNotFound
	}
	if out.Annotations.CanvasData == nil {
		out.Annotations.CanvasData = map[string]PageImage{}
	}
	return out.Annotations, nil
}

func (h *HTTP) Save(ctx context.Context, fileID string, a *Annotations) error {
	body, err := json.Marshal(saveRequest{FileID: fileID, Annotations: a})
	if err != nil {
		return fmt.Errorf("failed to encode annotations: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/saveAnnotations", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("save request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("save request failed: %s", resp.Status)
	}
	return nil
}
