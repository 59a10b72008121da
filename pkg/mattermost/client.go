// Package mattermost sends direct messages to users through
// a Mattermost bot, which exposes a simple JSON webhook.
package mattermost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tzrikka/revowners/internal/httpclient"
	"github.com/tzrikka/revowners/internal/logger"
)

// ErrNoBotURL is returned when the selected bot endpoint isn't configured.
var ErrNoBotURL = errors.New("bot URL for Mattermost is not configured")

type Client struct {
	http *httpclient.Client
}

func NewClient(botURL string, timeout time.Duration) (*Client, error) {
	if botURL == "" {
		return nil, ErrNoBotURL
	}
	return &Client{http: httpclient.New(botURL, nil, timeout)}, nil
}

type message struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	Props    *props `json:"props,omitempty"`
}

type props struct {
	Attachments []Attachment `json:"attachments"`
}

// Attachment is a Mattermost message attachment.
//
// Based on: https://developers.mattermost.com/integrate/reference/message-attachments/
type Attachment struct {
	Fallback  string `json:"fallback"`
	Title     string `json:"title"`
	TitleLink string `json:"title_link"`
	Text      string `json:"text"`
	Color     string `json:"color"`
}

// SendMessage sends a plain markdown direct message to a user.
func (c *Client) SendMessage(ctx context.Context, username, text string) error {
	logger.FromContext(ctx).Debug("sending Mattermost message", slog.String("username", username))
	if err := c.http.Post(ctx, "", message{Username: username, Message: text}, nil); err != nil {
		return fmt.Errorf("failed to send Mattermost message to %q: %w", username, err)
	}
	return nil
}

// SendRichMessage sends a direct message to a user, with a single
// attachment that has a title, an optional link, and a side color.
func (c *Client) SendRichMessage(ctx context.Context, username, title, link, color, text string) error {
	msg := message{
		Username: username,
		Props: &props{Attachments: []Attachment{{
			Fallback:  "MR_info",
			Title:     title,
			TitleLink: link,
			Text:      text,
			Color:     color,
		}}},
	}

	logger.FromContext(ctx).Debug("sending Mattermost rich message", slog.String("username", username),
		slog.String("title", title))
	if err := c.http.Post(ctx, "", msg, nil); err != nil {
		return fmt.Errorf("failed to send Mattermost message to %q: %w", username, err)
	}
	return nil
}
