package smartthings

import "sort"

// samsungKeyMap maps symbolic command names to Samsung KEY_* tokens.
// The mapping is static; TranslateKey never mutates it.
var samsungKeyMap = map[string]string{
	// Power
	"POWER":    "KEY_POWER",
	"POWEROFF": "KEY_POWEROFF",

	// Volume
	"VOLUP":   "KEY_VOLUP",
	"VOLDOWN": "KEY_VOLDOWN",
	"MUTE":    "KEY_MUTE",

	// Channels
	"CHUP":   "KEY_CHUP",
	"CHDOWN": "KEY_CHDOWN",
	"PRECH":  "KEY_PRECH",

	// Navigation
	"UP":     "KEY_UP",
	"DOWN":   "KEY_DOWN",
	"LEFT":   "KEY_LEFT",
	"RIGHT":  "KEY_RIGHT",
	"OK":     "KEY_ENTER",
	"ENTER":  "KEY_ENTER",
	"RETURN": "KEY_RETURN",
	"BACK":   "KEY_RETURN",
	"EXIT":   "KEY_EXIT",
	"HOME":   "KEY_HOME",
	"MENU":   "KEY_MENU",

	// Playback
	"PLAY":      "KEY_PLAY",
	"PAUSE":     "KEY_PAUSE",
	"STOP":      "KEY_STOP",
	"REWIND":    "KEY_REWIND",
	"FF":        "KEY_FF",
	"PLAY_BACK": "KEY_PLAY_BACK",

	// Source
	"SOURCE": "KEY_SOURCE",
	"HDMI":   "KEY_HDMI",
	"HDMI1":  "KEY_HDMI1",
	"HDMI2":  "KEY_HDMI2",
	"HDMI3":  "KEY_HDMI3",
	"HDMI4":  "KEY_HDMI4",

	// Numbers
	"NUM0": "KEY_0",
	"NUM1": "KEY_1",
	"NUM2": "KEY_2",
	"NUM3": "KEY_3",
	"NUM4": "KEY_4",
	"NUM5": "KEY_5",
	"NUM6": "KEY_6",
	"NUM7": "KEY_7",
	"NUM8": "KEY_8",
	"NUM9": "KEY_9",

	// Color buttons
	"RED":    "KEY_RED",
	"GREEN":  "KEY_GREEN",
	"YELLOW": "KEY_YELLOW",
	"BLUE":   "KEY_BLUE",

	// Additional
	"GUIDE":        "KEY_GUIDE",
	"CH_LIST":      "KEY_CH_LIST",
	"TOOLS":        "KEY_TOOLS",
	"INFO":         "KEY_INFO",
	"PICTURE_MODE": "KEY_PICTURE_MODE",
	"SOUND_MODE":   "KEY_SOUND_MODE",
	"SLEEP":        "KEY_SLEEP",
	"ASPECT":       "KEY_ASPECT",
	"CAPTION":      "KEY_CAPTION",
	"SETTINGS":     "KEY_SETTINGS",
	"E_MANUAL":     "KEY_E_MANUAL",
	"SEARCH":       "KEY_SEARCH",
	"REC":          "KEY_REC",
}

// supportedCommands is the subset of symbolic commands the SmartThings
// remoteControl capability accepts. Everything else only works over the
// local Tizen path and is rejected before any network call.
var supportedCommands = map[string]struct{}{
	"UP":        {},
	"DOWN":      {},
	"LEFT":      {},
	"RIGHT":     {},
	"OK":        {},
	"BACK":      {},
	"HOME":      {},
	"MENU":      {},
	"EXIT":      {},
	"MUTE":      {},
	"PLAY":      {},
	"PAUSE":     {},
	"STOP":      {},
	"REWIND":    {},
	"FF":        {},
	"PLAY_BACK": {},
	"SOURCE":    {},
}

// TranslateKey maps a symbolic command name to the Samsung key token.
// Unknown commands pass through unchanged, matching the behavior of
// sending a raw KEY_* token directly.
func TranslateKey(command string) string {
	if key, ok := samsungKeyMap[command]; ok {
		return key
	}
	return command
}

// IsSupported reports whether a symbolic command can be sent through the
// SmartThings API.
func IsSupported(command string) bool {
	_, ok := supportedCommands[command]
	return ok
}

// IsKnown reports whether a symbolic command has a key mapping at all.
// The local Tizen path accepts every known command, not just the
// SmartThings-supported subset.
func IsKnown(command string) bool {
	_, ok := samsungKeyMap[command]
	return ok
}

// SupportedCommands returns the sorted list of commands the SmartThings
// path accepts.
func SupportedCommands() []string {
	commands := make([]string, 0, len(supportedCommands))
	for command := range supportedCommands {
		commands = append(commands, command)
	}
	sort.Strings(commands)
	return commands
}

// AllCommands returns the sorted list of every known symbolic command,
// including ones that only work over the local Tizen path.
func AllCommands() []string {
	commands := make([]string, 0, len(samsungKeyMap))
	for command := range samsungKeyMap {
		commands = append(commands, command)
	}
	sort.Strings(commands)
	return commands
}
