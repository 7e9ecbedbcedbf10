package evolution

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultEvents is registered when SetWebhook is called without an explicit
// event list.
var DefaultEvents = []string{
	"APPLICATION_STARTUP",
	"QRCODE_UPDATED",
	"MESSAGES_UPSERT",
	"MESSAGES_UPDATE",
	"MESSAGES_DELETE",
	"SEND_MESSAGE",
	"CONTACTS_SET",
	"CONTACTS_UPSERT",
	"CONTACTS_UPDATE",
	"PRESENCE_UPDATE",
	"CHATS_SET",
	"CHATS_UPSERT",
	"CHATS_UPDATE",
	"CHATS_DELETE",
	"GROUPS_UPSERT",
	"GROUP_UPDATE",
	"GROUP_PARTICIPANTS_UPDATE",
	"CONNECTION_UPDATE",
	"CALL",
	"NEW_JWT_TOKEN",
}

// APIError is returned for any non-2xx response from the Evolution API.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("evolution API error: %s %s: %d - %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// Client issues REST calls against an Evolution API server. Instance
// management endpoints authenticate with the global key; instance-scoped
// endpoints pass their per-instance key. The client never retries.
type Client struct {
	BaseURL      string
	GlobalAPIKey string
	HTTPClient   *http.Client
}

func NewClient(baseURL, globalAPIKey string) *Client {
	return &Client{
		BaseURL:      baseURL,
		GlobalAPIKey: globalAPIKey,
		HTTPClient:   &http.Client{},
	}
}

// sendRequest marshals body (if any), attaches the apikey header and decodes
// the JSON response into out (if non-nil). An empty apiKey falls back to the
// global key.
func (c *Client) sendRequest(method, endpoint, apiKey string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+endpoint, bodyReader)
	if err != nil {
		return err
	}

	if apiKey == "" {
		apiKey = c.GlobalAPIKey
	}
	req.Header.Set("apikey", apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("evolution API request failed: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response from %s: %w", endpoint, err)
		}
	}
	return nil
}

// --- Instance Management ---

func (c *Client) CreateInstance(req CreateInstanceRequest) (*CreateInstanceResponse, error) {
	if req.Integration == "" {
		req.Integration = "WHATSAPP-BAILEYS"
	}
	var resp CreateInstanceResponse
	if err := c.sendRequest("POST", "/instance/create", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteInstance(instanceName, apiKey string) error {
	return c.sendRequest("DELETE", "/instance/delete/"+instanceName, apiKey, nil, nil)
}

func (c *Client) ConnectInstance(instanceName, apiKey string) (*ConnectResponse, error) {
	var resp ConnectResponse
	if err := c.sendRequest("GET", "/instance/connect/"+instanceName, apiKey, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) LogoutInstance(instanceName, apiKey string) error {
	return c.sendRequest("DELETE", "/instance/logout/"+instanceName, apiKey, nil, nil)
}

func (c *Client) RestartInstance(instanceName, apiKey string) error {
	return c.sendRequest("PUT", "/instance/restart/"+instanceName, apiKey, nil, nil)
}

func (c *Client) GetConnectionState(instanceName, apiKey string) (*ConnectionState, error) {
	var resp ConnectionState
	if err := c.sendRequest("GET", "/instance/connectionState/"+instanceName, apiKey, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) FetchInstances() ([]FetchedInstance, error) {
	var resp []FetchedInstance
	if err := c.sendRequest("GET", "/instance/fetchInstances", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// --- Messaging ---

func (c *Client) SendTextMessage(instanceName, apiKey string, req SendTextRequest) (*SendMessageResponse, error) {
	var resp SendMessageResponse
	if err := c.sendRequest("POST", "/message/sendText/"+instanceName, apiKey, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SendMediaMessage(instanceName, apiKey string, req SendMediaRequest) (*SendMessageResponse, error) {
	var resp SendMessageResponse
	if err := c.sendRequest("POST", "/message/sendMedia/"+instanceName, apiKey, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Webhook Management ---

func (c *Client) SetWebhook(instanceName, apiKey, webhookURL string, events []string) error {
	if len(events) == 0 {
		events = DefaultEvents
	}
	body := WebhookSettings{
		Webhook:         webhookURL,
		WebhookByEvents: true,
		WebhookBase64:   false,
		Events:          events,
	}
	return c.sendRequest("POST", "/webhook/set/"+instanceName, apiKey, body, nil)
}

func (c *Client) FindWebhook(instanceName, apiKey string) (*WebhookSettings, error) {
	var resp WebhookSettings
	if err := c.sendRequest("GET", "/webhook/find/"+instanceName, apiKey, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Chat Queries ---

func (c *Client) FindContacts(instanceName, apiKey string) ([]ContactRecord, error) {
	var resp []ContactRecord
	if err := c.sendRequest("GET", "/chat/findContacts/"+instanceName, apiKey, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) FindChats(instanceName, apiKey string) ([]ChatRecord, error) {
	var resp []ChatRecord
	if err := c.sendRequest("GET", "/chat/findChats/"+instanceName, apiKey, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// FindMessages returns at most limit messages for the given counterparty.
// The gateway exposes no cursor, so callers cannot page past the first batch.
func (c *Client) FindMessages(instanceName, apiKey, remoteJid string, limit int) ([]MessageRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	body := findMessagesRequest{
		Where: findMessagesWhere{Key: findMessagesKey{RemoteJid: remoteJid}},
		Limit: limit,
	}
	var resp []MessageRecord
	if err := c.sendRequest("POST", "/chat/findMessages/"+instanceName, apiKey, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
