package smartthings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateKey(t *testing.T) {
	assert.Equal(t, "KEY_MUTE", TranslateKey("MUTE"))
	assert.Equal(t, "KEY_ENTER", TranslateKey("OK"))
	assert.Equal(t, "KEY_ENTER", TranslateKey("ENTER"))
	assert.Equal(t, "KEY_RETURN", TranslateKey("BACK"))

	// Unknown commands pass through so raw KEY_* tokens keep working.
	assert.Equal(t, "KEY_CUSTOM", TranslateKey("KEY_CUSTOM"))
}

func TestTranslateKey_Idempotent(t *testing.T) {
	first := TranslateKey("MUTE")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TranslateKey("MUTE"))
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("MUTE"))
	assert.True(t, IsSupported("UP"))
	assert.True(t, IsSupported("SOURCE"))

	// Power and volume only work over the local path.
	assert.False(t, IsSupported("POWER"))
	assert.False(t, IsSupported("VOLUP"))
	assert.False(t, IsSupported("NOT_A_COMMAND"))
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown("MUTE"))
	assert.True(t, IsKnown("POWER"))
	assert.True(t, IsKnown("HDMI1"))
	assert.False(t, IsKnown("NOT_A_COMMAND"))
}

func TestSupportedCommands(t *testing.T) {
	commands := SupportedCommands()
	assert.Len(t, commands, 17)
	assert.Contains(t, commands, "MUTE")
	assert.IsIncreasing(t, commands)

	// Every supported command has a key mapping.
	for _, command := range commands {
		_, ok := samsungKeyMap[command]
		assert.True(t, ok, "command %s has no key mapping", command)
	}
}

func TestAllCommands(t *testing.T) {
	commands := AllCommands()
	assert.Greater(t, len(commands), len(SupportedCommands()))
	assert.Contains(t, commands, "POWER")
	assert.IsIncreasing(t, commands)
}
