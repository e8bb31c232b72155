// Package notify delivers progress messages and finished documents to users
// through the Telegram Bot API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// MessageRef identifies a sent message for later in-place edits.
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

type TelegramNotifier struct {
	token   string
	baseURL string
	httpc   *http.Client
}

func NewTelegramNotifier(token string, opts ...Option) *TelegramNotifier {
	n := &TelegramNotifier{
		token:   token,
		baseURL: defaultAPIBase,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type Option func(*TelegramNotifier)

func WithBaseURL(u string) Option {
	return func(n *TelegramNotifier) { n.baseURL = strings.TrimRight(u, "/") }
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (n *TelegramNotifier) call(ctx context.Context, method string, form url.Values) (*apiResponse, error) {
	endpoint := fmt.Sprintf("%s/bot%s/%s", n.baseURL, n.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, method)
}

func decodeResponse(resp *http.Response, method string) (*apiResponse, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram %s: %s", method, parsed.Description)
	}
	return &parsed, nil
}

// Send posts an HTML-formatted message and returns a reference for edits.
func (n *TelegramNotifier) Send(ctx context.Context, chatID int64, text string) (MessageRef, error) {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	resp, err := n.call(ctx, "sendMessage", form)
	if err != nil {
		return MessageRef{}, err
	}
	return MessageRef{ChatID: chatID, MessageID: resp.Result.MessageID}, nil
}

// Edit replaces the referenced message's text in place.
func (n *TelegramNotifier) Edit(ctx context.Context, ref MessageRef, text string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(ref.ChatID, 10))
	form.Set("message_id", strconv.FormatInt(ref.MessageID, 10))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	_, err := n.call(ctx, "editMessageText", form)
	return err
}

// SendDocument uploads the file at path with a caption.
func (n *TelegramNotifier) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return err
	}
	if err := mw.WriteField("caption", caption); err != nil {
		return err
	}
	if err := mw.WriteField("parse_mode", "HTML"); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendDocument", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := n.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, err = decodeResponse(resp, "sendDocument")
	return err
}
