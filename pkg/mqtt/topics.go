package mqtt

import (
	"fmt"
	"strings"
)

// TopicDisplayBase is the root of every display output topic
const TopicDisplayBase = "automation/display/weather"

// CommandTopic returns the location command topic for a display
// Pattern: automation/command/weather/{display}
func CommandTopic(display string) string {
	return fmt.Sprintf("automation/command/weather/%s", display)
}

// SceneTopic returns the retained scene topic for a display
// Pattern: automation/display/weather/{display}/scene
func SceneTopic(display string) string {
	return displayTopic(display, "scene")
}

// ViewTopic returns the dashboard view topic for a display
// Pattern: automation/display/weather/{display}/view
func ViewTopic(display string) string {
	return displayTopic(display, "view")
}

// StatusTopic returns the status topic for a display
// Pattern: automation/display/weather/{display}/status
func StatusTopic(display string) string {
	return displayTopic(display, "status")
}

// LightningTopic returns the flash topic for a display
// Pattern: automation/display/weather/{display}/lightning
func LightningTopic(display string) string {
	return displayTopic(display, "lightning")
}

func displayTopic(display, leaf string) string {
	return fmt.Sprintf("%s/%s/%s", TopicDisplayBase, display, leaf)
}

// DisplayFromCommandTopic extracts the display ID from a command topic
// automation/command/weather/{display} -> {display}
func DisplayFromCommandTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "automation" || parts[1] != "command" || parts[2] != "weather" || parts[3] == "" {
		return "", false
	}
	return parts[3], true
}
