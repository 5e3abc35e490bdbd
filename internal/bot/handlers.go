package bot

import (
	"context"

	"tvbridge/internal/remote"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleStart handles the /start command
func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	text := `👋 *Welcome to the TV Remote Bot!*

I turn this chat into a remote control for your Samsung TV.

*Available Commands:*

🎛 /remote - Open the on-screen remote
📺 /devices - Pick which TV to control
🩺 /status - Check backend connectivity

*Quick Actions:*`

	keyboard := BuildQuickActionsButtons()
	return b.sendMessage(message.Chat.ID, text, keyboard)
}

// handleRemote handles the /remote command
func (b *Bot) handleRemote(ctx context.Context, message *tgbotapi.Message) error {
	deviceID := b.getDeviceID()
	if deviceID == "" && b.backendName() != "tizen" {
		return b.sendMessage(message.Chat.ID,
			"❌ No TV selected. Use /devices to pick one first.", BuildQuickActionsButtons())
	}

	text := "🎛 *TV Remote*"
	if deviceID != "" {
		text += "\nDevice: `" + deviceID + "`"
	}
	return b.sendMessage(message.Chat.ID, text, BuildRemoteKeyboard())
}

// handleDevices handles the /devices command
func (b *Bot) handleDevices(ctx context.Context, message *tgbotapi.Message) error {
	client, err := b.registry.Get(b.backendName())
	if err != nil {
		return b.sendMessage(message.Chat.ID, FormatError(err), BuildQuickActionsButtons())
	}

	lister, ok := client.(remote.DeviceLister)
	if !ok {
		return b.sendMessage(message.Chat.ID,
			"📺 The "+b.backendName()+" backend controls a single fixed TV.",
			BuildQuickActionsButtons())
	}

	devices, err := lister.Devices(ctx)
	if err != nil {
		return b.sendMessage(message.Chat.ID, FormatError(err), BuildQuickActionsButtons())
	}

	if len(devices) == 0 {
		return b.sendMessage(message.Chat.ID,
			"❌ No televisions found on this account.", BuildQuickActionsButtons())
	}

	text := FormatDevices(devices, b.getDeviceID())
	return b.sendMessage(message.Chat.ID, text, BuildDevicesButtons(devices))
}

// handleStatus handles the /status command
func (b *Bot) handleStatus(ctx context.Context, message *tgbotapi.Message) error {
	results := make(map[string]bool)
	for _, name := range b.registry.List() {
		client, err := b.registry.Get(name)
		if err != nil {
			continue
		}
		results[name] = client.Validate(ctx)
	}

	text := FormatStatus(results)
	return b.sendMessage(message.Chat.ID, text, BuildQuickActionsButtons())
}
