package bot

import (
	"fmt"
	"sort"
	"strings"

	"tvbridge/internal/remote"
)

// FormatError formats an error for display in chat
func FormatError(err error) string {
	return fmt.Sprintf("❌ *Error:* %s", err.Error())
}

// FormatDevices formats the television listing, marking the selected one
func FormatDevices(devices []remote.DeviceInfo, selectedID string) string {
	var sb strings.Builder
	sb.WriteString("📺 *Televisions*\n\n")

	for i, device := range devices {
		marker := "  "
		if device.ID == selectedID {
			marker = "▶ "
		}
		sb.WriteString(fmt.Sprintf("%s%d. *%s*\n", marker, i+1, device.Label))
		if device.Type != "" {
			sb.WriteString(fmt.Sprintf("    _%s_\n", device.Type))
		}
	}

	sb.WriteString("\nSelect a TV to control:")
	return sb.String()
}

// FormatStatus formats backend reachability results
func FormatStatus(results map[string]bool) string {
	var sb strings.Builder
	sb.WriteString("🩺 *Backend Status*\n\n")

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if results[name] {
			sb.WriteString(fmt.Sprintf("✅ %s: reachable\n", name))
		} else {
			sb.WriteString(fmt.Sprintf("❌ %s: unreachable\n", name))
		}
	}

	if len(names) == 0 {
		sb.WriteString("No backends registered.")
	}
	return sb.String()
}
