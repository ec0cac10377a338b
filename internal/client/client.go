// Package client talks to the lookup API the way the browser frontend does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Ayash-Bera/student-lookup/internal/models"
	"github.com/sirupsen/logrus"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// FindStudents posts a classification to /byENR. A 404 is models.ErrNotFound
// and a 400 wraps models.ErrInvalidInput.
func (c *Client) FindStudents(ctx context.Context, classification models.Classification) ([]models.StudentRecord, error) {
	body := struct {
		Result models.Classification `json:"result"`
	}{Result: classification}

	var records []models.StudentRecord
	if err := c.makeRequest(ctx, http.MethodPost, "/byENR", body, &records); err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Normalize()
	}
	return records, nil
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, payload interface{}, result interface{}) error {
	url := c.baseURL + endpoint

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(jsonData)

		c.logger.WithFields(logrus.Fields{
			"method":       method,
			"url":          url,
			"payload_json": string(jsonData),
		}).Debug("Request payload")
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"method":        method,
		"url":           url,
		"response_size": len(responseBody),
	}).Debug("Lookup API response received")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", models.ErrInvalidInput, errorText(responseBody))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, errorText(responseBody))
	}

	if result != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func errorText(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return string(body)
}
