package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"service-request-api/config"
)

// GatewayResponse is the outcome of one LINE API round-trip. A
// transport-level failure is reported separately as an error; this
// value only exists when an HTTP response came back.
type GatewayResponse struct {
	Status int
	Body   string
}

// OK reports whether the gateway accepted the call.
func (r GatewayResponse) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// LineGateway is the push-messaging surface the dispatcher and the
// menu switch depend on. Implemented by LineClient; faked in tests.
type LineGateway interface {
	PushMessage(to, text string) (GatewayResponse, error)
	LinkRichMenu(to, richMenuID string) (GatewayResponse, error)
	UnlinkRichMenu(to string) (GatewayResponse, error)
}

// LineClient is a thin binding to the LINE Messaging API. Stateless;
// every call is one independent round-trip with no retry.
type LineClient struct {
	base   string
	token  string
	client *http.Client
}

func NewLineClient(cfg *config.AppConfig) *LineClient {
	return &LineClient{
		base:   cfg.LineAPIBase,
		token:  cfg.LineChannelToken,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type linePushPayload struct {
	To       string            `json:"to"`
	Messages []lineTextMessage `json:"messages"`
}

type lineTextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PushMessage sends one plain-text message to a LINE user.
func (l *LineClient) PushMessage(to, text string) (GatewayResponse, error) {
	payload := linePushPayload{
		To:       to,
		Messages: []lineTextMessage{{Type: "text", Text: text}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return GatewayResponse{}, fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, l.base+"/v2/bot/message/push", bytes.NewReader(body))
	if err != nil {
		return GatewayResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.token)

	return l.do(req)
}

// LinkRichMenu assigns a rich menu to a LINE user.
func (l *LineClient) LinkRichMenu(to, richMenuID string) (GatewayResponse, error) {
	url := fmt.Sprintf("%s/v2/bot/user/%s/richmenu/%s", l.base, to, richMenuID)
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return GatewayResponse{}, err
	}
	// LINE rejects body-less POSTs without an explicit zero length.
	req.Header.Set("Content-Length", "0")
	req.ContentLength = 0
	req.Header.Set("Authorization", "Bearer "+l.token)

	return l.do(req)
}

// UnlinkRichMenu removes the rich menu currently assigned to a LINE user.
func (l *LineClient) UnlinkRichMenu(to string) (GatewayResponse, error) {
	url := fmt.Sprintf("%s/v2/bot/user/%s/richmenu", l.base, to)
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return GatewayResponse{}, err
	}
	req.Header.Set("Content-Length", "0")
	req.ContentLength = 0
	req.Header.Set("Authorization", "Bearer "+l.token)

	return l.do(req)
}

func (l *LineClient) do(req *http.Request) (GatewayResponse, error) {
	resp, err := l.client.Do(req)
	if err != nil {
		return GatewayResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return GatewayResponse{}, err
	}

	return GatewayResponse{Status: resp.StatusCode, Body: string(data)}, nil
}
