// Package line is a minimal client for the LINE Messaging API - webhook
// signature validation and parsing, message content download and reply
// delivery. It covers only the slice of the API the logger uses.
package line

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// SignatureHeader carries the base64 HMAC-SHA256 of the raw request body.
	SignatureHeader = "X-Line-Signature"

	defaultAPIEndpoint  = "https://api.line.me"
	defaultDataEndpoint = "https://api-data.line.me"
)

// ClientOptions configures a Client. Endpoint overrides are used by tests.
type ClientOptions struct {
	AccessToken  string
	Secret       string
	APIEndpoint  string
	DataEndpoint string
	HTTPClient   *http.Client
}

type Client struct {
	accessToken  string
	secret       string
	apiEndpoint  string
	dataEndpoint string
	httpClient   *http.Client
}

func NewClient(accessToken, secret string) (*Client, error) {
	return NewClientWithOptions(ClientOptions{
		AccessToken: accessToken,
		Secret:      secret,
	})
}

func NewClientWithOptions(opts ClientOptions) (*Client, error) {
	if strings.TrimSpace(opts.AccessToken) == "" {
		return nil, fmt.Errorf("LINE channel access token is required")
	}

	if strings.TrimSpace(opts.Secret) == "" {
		return nil, fmt.Errorf("LINE channel secret is required")
	}

	api := strings.TrimRight(opts.APIEndpoint, "/")
	if api == "" {
		api = defaultAPIEndpoint
	}

	data := strings.TrimRight(opts.DataEndpoint, "/")
	if data == "" {
		data = defaultDataEndpoint
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		accessToken:  opts.AccessToken,
		secret:       opts.Secret,
		apiEndpoint:  api,
		dataEndpoint: data,
		httpClient:   httpClient,
	}, nil
}

// ValidateSignature checks the webhook signature over the raw request body.
func (c *Client) ValidateSignature(body []byte, signature string) bool {
	return ValidateSignature(c.secret, body, signature)
}

func ValidateSignature(secret string, body []byte, signature string) bool {
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hmac.Equal(decoded, mac.Sum(nil))
}

// Sign computes the webhook signature for a body. Used by the local
// simulation commands and by tests.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Event is one entry of a webhook event batch.
type Event struct {
	Type       string  `json:"type"`
	Timestamp  int64   `json:"timestamp"`
	ReplyToken string  `json:"replyToken,omitempty"`
	Source     Source  `json:"source"`
	Message    Message `json:"message"`
}

type Source struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

type Message struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	PackageID string `json:"packageId,omitempty"`
	StickerID string `json:"stickerId,omitempty"`
}

type webhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// ParseRequest unmarshals a webhook event batch.
func ParseRequest(body []byte) ([]Event, error) {
	var rq webhookRequest

	if err := json.Unmarshal(body, &rq); err != nil {
		return nil, fmt.Errorf("invalid webhook request body (%v)", err)
	}

	return rq.Events, nil
}

// GetMessageContent downloads the binary content of a message (image, etc.)
// from the LINE data endpoint.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) ([]byte, error) {
	url := fmt.Sprintf("%s/v2/bot/message/%s/content", c.dataEndpoint, messageID)

	rq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	rq.Header.Set("Authorization", "Bearer "+c.accessToken)

	response, err := c.httpClient.Do(rq)
	if err != nil {
		return nil, fmt.Errorf("error downloading content for message %s (%w)", messageID, err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading content for message %s (%s)", messageID, response.Status)
	}

	return io.ReadAll(response.Body)
}

// ReplyText sends a single text message in reply to a webhook event.
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	payload := map[string]any{
		"replyToken": replyToken,
		"messages": []map[string]string{
			{"type": "text", "text": text},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := c.apiEndpoint + "/v2/bot/message/reply"

	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	rq.Header.Set("Authorization", "Bearer "+c.accessToken)
	rq.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(rq)
	if err != nil {
		return fmt.Errorf("error sending reply (%w)", err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return fmt.Errorf("error sending reply (%s: %s)", response.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}

// BotInfo is the subset of GET /v2/bot/info used by the 'check' command.
type BotInfo struct {
	UserID      string `json:"userId"`
	BasicID     string `json:"basicId"`
	DisplayName string `json:"displayName"`
}

// GetBotInfo fetches the bot profile, primarily as a connectivity and
// credential check.
func (c *Client) GetBotInfo(ctx context.Context) (BotInfo, error) {
	url := c.apiEndpoint + "/v2/bot/info"

	rq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return BotInfo{}, err
	}

	rq.Header.Set("Authorization", "Bearer "+c.accessToken)

	response, err := c.httpClient.Do(rq)
	if err != nil {
		return BotInfo{}, fmt.Errorf("error fetching bot info (%w)", err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return BotInfo{}, fmt.Errorf("error fetching bot info (%s)", response.Status)
	}

	var info BotInfo
	if err := json.NewDecoder(response.Body).Decode(&info); err != nil {
		return BotInfo{}, fmt.Errorf("error decoding bot info (%v)", err)
	}

	return info, nil
}
