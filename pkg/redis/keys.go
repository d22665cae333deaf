package redis

import "fmt"

// LocationKey returns the key holding a display's last typed location (string)
// Pattern: weather:location:{display}
func LocationKey(display string) string {
	return fmt.Sprintf("weather:location:%s", display)
}
