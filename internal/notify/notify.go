// Package notify sends run-completion messages to chat channels.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/slack-go/slack"
)

// Notifier delivers a completion message to one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, text string) error
}

// Slack posts messages to a fixed Slack channel.
type Slack struct {
	client  *slack.Client
	channel string
}

// NewSlack creates a Slack notifier.
func NewSlack(botToken, channel string) *Slack {
	return &Slack{client: slack.New(botToken), channel: channel}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Notify(ctx context.Context, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting to slack: %w", err)
	}
	return nil
}

// Telegram sends messages to a fixed chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a Telegram notifier. It validates the token against
// the Bot API on construction.
func NewTelegram(botToken string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Notify(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}
