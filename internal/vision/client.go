// Package vision содержит клиент определения меток изображений через Google Vision API.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

const DefaultEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// Запасные метки: сбой вызова никогда не блокирует конвейер загрузки.
const (
	FallbackLabel = "Item"
	NoLabelFound  = "No label found"
)

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает клиент. Пустой endpoint заменяется боевым адресом API.
func NewClient(endpoint, apiKey string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageSource `json:"image"`
	Features []feature   `json:"features"`
}

type imageSource struct {
	Source sourceURI `json:"source"`
}

type sourceURI struct {
	ImageURI string `json:"imageUri"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type annotateResponse struct {
	Responses []struct {
		LabelAnnotations []labelAnnotation `json:"labelAnnotations"`
	} `json:"responses"`
}

type labelAnnotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Classify возвращает наиболее вероятную метку для изображения по URL.
// Ошибка вызова не возвращается наружу: при любом сбое отдается FallbackLabel,
// при успешном ответе без кандидатов — NoLabelFound.
func (c *Client) Classify(ctx context.Context, imageURL string) string {
	labels, err := c.annotate(ctx, imageURL)
	if err != nil {
		log.Printf("classification error: %v", err)
		return FallbackLabel
	}
	if len(labels) == 0 {
		return NoLabelFound
	}
	return bestLabel(labels)
}

// bestLabel выбирает кандидата с максимальным score; при равенстве
// побеждает более ранний в ответе.
func bestLabel(labels []labelAnnotation) string {
	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return best.Description
}

func (c *Client) annotate(ctx context.Context, imageURL string) ([]labelAnnotation, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("vision api key is missing")
	}

	reqBody := annotateRequest{
		Requests: []imageRequest{
			{
				Image: imageSource{Source: sourceURI{ImageURI: imageURL}},
				Features: []feature{
					{Type: "LABEL_DETECTION", MaxResults: 10},
				},
			},
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp annotateResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(apiResp.Responses) == 0 {
		return nil, nil
	}
	return apiResp.Responses[0].LabelAnnotations, nil
}
