package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"tvbridge/config"
	"tvbridge/internal/remote"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is a Telegram remote control for a television. Button presses
// are dispatched through a registered backend.
type Bot struct {
	api      *tgbotapi.BotAPI
	registry *remote.Registry
	config   *config.BotConfig
	logger   *slog.Logger

	mu       sync.Mutex
	deviceID string
}

// NewBot creates a new Telegram bot instance
func NewBot(cfg *config.BotConfig, registry *remote.Registry, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot := &Bot{
		api:      api,
		registry: registry,
		config:   cfg,
		logger:   logger.With("component", "bot"),
		deviceID: cfg.DeviceID,
	}

	return bot, nil
}

// Run starts the long-polling loop and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Bot started",
		"username", b.api.Self.UserName,
		"backend", b.backendName(),
	)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Bot stopped")
			return ctx.Err()
		case update := <-updates:
			if err := b.HandleUpdate(ctx, update); err != nil {
				b.logger.Error("Failed to handle update", "error", err)
			}
		}
	}
}

// HandleUpdate processes a Telegram update
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	// Check authorization for all updates
	var chatID int64
	if update.Message != nil {
		chatID = update.Message.Chat.ID
	} else if update.CallbackQuery != nil {
		// Inline-mode and expired-message callbacks carry no message, so
		// there is nowhere to route a reply. Clear the loading state and
		// drop the update.
		if update.CallbackQuery.Message == nil {
			b.answerCallback(update.CallbackQuery.ID, "")
			return nil
		}
		chatID = update.CallbackQuery.Message.Chat.ID
	} else {
		// Ignore updates without chat info
		return nil
	}

	if !b.config.IsChatAllowed(chatID) {
		b.logger.Warn("Unauthorized access attempt",
			"chat_id", chatID,
		)
		return b.sendMessage(chatID,
			"⛔ You are not authorized to use this bot.", nil)
	}

	if update.Message != nil {
		return b.handleMessage(ctx, update.Message)
	}

	if update.CallbackQuery != nil {
		return b.handleCallback(ctx, update.CallbackQuery)
	}

	return nil
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	b.logger.Info("Received message",
		"chat_id", message.Chat.ID,
		"text", message.Text,
	)

	if !message.IsCommand() {
		// Ignore non-command messages
		return nil
	}

	switch message.Command() {
	case "start":
		return b.handleStart(ctx, message)
	case "remote":
		return b.handleRemote(ctx, message)
	case "devices":
		return b.handleDevices(ctx, message)
	case "status":
		return b.handleStatus(ctx, message)
	default:
		return b.sendMessage(message.Chat.ID,
			"Unknown command. Use /start to see available commands.", nil)
	}
}

// handleCallback processes callback queries from inline buttons
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	// Check if callback data is a raw command (starts with /)
	if len(callback.Data) > 0 && callback.Data[0] == '/' {
		b.answerCallback(callback.ID, "")
		msg := &tgbotapi.Message{
			Chat: callback.Message.Chat,
			From: callback.From,
			Text: callback.Data,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(callback.Data)},
			},
		}
		return b.handleMessage(ctx, msg)
	}

	data, err := UnmarshalCallback(callback.Data)
	if err != nil {
		b.logger.Error("Failed to unmarshal callback data",
			"raw_data", callback.Data,
			"error", err,
		)
		b.answerCallback(callback.ID, "")
		return b.sendMessage(callback.Message.Chat.ID, FormatError(err), nil)
	}

	switch data.Action {
	case "key":
		return b.handleKeyPress(ctx, callback, data.Key)
	case "device":
		b.setDeviceID(data.Device)
		b.answerCallback(callback.ID, "Device selected")
		return b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID,
			fmt.Sprintf("🎛 *TV Remote*\nDevice: `%s`", data.Device), BuildRemoteKeyboard())
	case "refresh":
		b.answerCallback(callback.ID, "")
		return b.handleDevices(ctx, callback.Message)
	default:
		b.answerCallback(callback.ID, "")
		return b.sendMessage(callback.Message.Chat.ID, "Unknown action.", nil)
	}
}

// handleKeyPress dispatches a remote key press through the backend
func (b *Bot) handleKeyPress(ctx context.Context, callback *tgbotapi.CallbackQuery, key string) error {
	client, err := b.registry.Get(b.backendName())
	if err != nil {
		b.answerCallback(callback.ID, "Backend unavailable")
		return b.sendMessage(callback.Message.Chat.ID, FormatError(err), nil)
	}

	deviceID := b.getDeviceID()
	sent := client.SendCommand(ctx, deviceID, key)

	b.logger.Info("Key press",
		"chat_id", callback.Message.Chat.ID,
		"key", key,
		"device_id", deviceID,
		"sent", sent,
	)

	if sent {
		b.answerCallback(callback.ID, key)
	} else {
		b.answerCallback(callback.ID, "❌ "+key+" failed")
	}
	return nil
}

// answerCallback removes the loading state from a pressed button
func (b *Bot) answerCallback(callbackID, text string) {
	answer := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(answer); err != nil {
		b.logger.Error("Failed to answer callback", "error", err)
	}
}

func (b *Bot) backendName() string {
	if b.config.Backend != "" {
		return b.config.Backend
	}
	return "smartthings"
}

func (b *Bot) getDeviceID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deviceID
}

func (b *Bot) setDeviceID(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deviceID = id
}

// sendMessage sends a text message
func (b *Bot) sendMessage(chatID int64, text string, keyboard interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"

	if keyboard != nil {
		switch kb := keyboard.(type) {
		case tgbotapi.InlineKeyboardMarkup:
			msg.ReplyMarkup = kb
		}
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			"chat_id", chatID,
			"error", err,
		)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// editMessage edits an existing message
func (b *Bot) editMessage(chatID int64, messageID int, text string, keyboard interface{}) error {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = "Markdown"

	if keyboard != nil {
		switch kb := keyboard.(type) {
		case tgbotapi.InlineKeyboardMarkup:
			msg.ReplyMarkup = &kb
		}
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to edit message",
			"chat_id", chatID,
			"message_id", messageID,
			"error", err,
		)
		return fmt.Errorf("failed to edit message: %w", err)
	}

	return nil
}
