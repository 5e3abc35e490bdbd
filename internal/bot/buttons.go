package bot

import (
	"encoding/json"
	"fmt"

	"tvbridge/internal/remote"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CallbackData represents the data embedded in callback buttons
type CallbackData struct {
	Action string `json:"a"`           // Action type (key, device, refresh)
	Key    string `json:"k,omitempty"` // Remote command name
	Device string `json:"d,omitempty"` // Device ID
}

// MarshalCallback converts CallbackData to JSON string
func MarshalCallback(data CallbackData) string {
	b, err := json.Marshal(data)
	if err != nil {
		// Should never happen with simple structs
		return ""
	}
	return string(b)
}

// UnmarshalCallback parses callback data from JSON string
func UnmarshalCallback(data string) (*CallbackData, error) {
	var cb CallbackData
	if err := json.Unmarshal([]byte(data), &cb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal callback: %w", err)
	}
	return &cb, nil
}

func keyButton(label, command string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(
		label,
		MarshalCallback(CallbackData{Action: "key", Key: command}),
	)
}

// BuildRemoteKeyboard creates the on-screen TV remote.
// Layout: navigation pad, system keys, playback row, volume row.
func BuildRemoteKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			keyButton("🔇", "MUTE"),
			keyButton("⬆️", "UP"),
			keyButton("📺", "SOURCE"),
		),
		tgbotapi.NewInlineKeyboardRow(
			keyButton("⬅️", "LEFT"),
			keyButton("OK", "OK"),
			keyButton("➡️", "RIGHT"),
		),
		tgbotapi.NewInlineKeyboardRow(
			keyButton("↩️", "BACK"),
			keyButton("⬇️", "DOWN"),
			keyButton("🏠", "HOME"),
		),
		tgbotapi.NewInlineKeyboardRow(
			keyButton("☰ Menu", "MENU"),
			keyButton("✖️ Exit", "EXIT"),
		),
		tgbotapi.NewInlineKeyboardRow(
			keyButton("⏪", "REWIND"),
			keyButton("▶️", "PLAY"),
			keyButton("⏸", "PAUSE"),
			keyButton("⏹", "STOP"),
			keyButton("⏩", "FF"),
		),
	)
}

// BuildDevicesButtons creates buttons for selecting the TV to control
func BuildDevicesButtons(devices []remote.DeviceInfo) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, device := range devices {
		callback := MarshalCallback(CallbackData{
			Action: "device",
			Device: device.ID,
		})

		btn := tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("📺 %s", device.Label),
			callback,
		)
		rows = append(rows, []tgbotapi.InlineKeyboardButton{btn})
	}

	refreshBtn := tgbotapi.NewInlineKeyboardButtonData(
		"🔄 Refresh",
		MarshalCallback(CallbackData{Action: "refresh"}),
	)
	rows = append(rows, []tgbotapi.InlineKeyboardButton{refreshBtn})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// BuildQuickActionsButtons creates compact shortcut buttons for responses
func BuildQuickActionsButtons() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎛 Remote", "/remote"),
			tgbotapi.NewInlineKeyboardButtonData("📺 Devices", "/devices"),
			tgbotapi.NewInlineKeyboardButtonData("🩺 Status", "/status"),
		),
	)
}
