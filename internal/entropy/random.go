// Package entropy supplies seeds for fresh worlds. Seeds come from
// random.org when an API key is configured, otherwise from crypto/rand.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const randomOrgURL = "https://api.random.org/json-rpc/4/invoke"

// Client fetches seeds from random.org. A nil Client is valid and uses
// crypto/rand.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: randomOrgURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Seed returns a fresh world seed in [0, 1). Falls back to crypto/rand when
// the client is nil or the API call fails.
func (c *Client) Seed() float64 {
	if c == nil {
		return CryptoFloat()
	}
	v, err := c.fetch()
	if err != nil {
		slog.Debug("random.org seed failed, using crypto/rand", "error", err)
		return CryptoFloat()
	}
	return v
}

func (c *Client) fetch() (float64, error) {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateDecimalFractions",
		"params": map[string]any{
			"apiKey":        c.apiKey,
			"n":             1,
			"decimalPlaces": 14,
		},
		"id": 1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	var result struct {
		Result struct {
			Random struct {
				Data []float64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}
	if result.Error != nil {
		return 0, fmt.Errorf("api: %s", result.Error.Message)
	}
	data := result.Result.Random.Data
	if len(data) == 0 || data[0] < 0 || data[0] >= 1 {
		return 0, fmt.Errorf("api: no usable fraction")
	}
	return data[0], nil
}

// CryptoFloat returns a uniform float64 in [0, 1) from crypto/rand.
func CryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
