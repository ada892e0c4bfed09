package core

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"inboundbot/utils"
)

// NewID generates a new ULID with the specified prefix.
// The resulting ID follows the format: prefix_ULID
// Example: NewID("evt") returns "evt_01G0EZ1XTM37C5X11SQTDNCTM1"
func NewID(prefix string) string {
	utils.AssertInvariant(strings.TrimSpace(prefix) != "", "prefix cannot be empty")

	cleanPrefix := strings.TrimSpace(strings.ToLower(prefix))
	return fmt.Sprintf("%s_%s", cleanPrefix, ulid.Make().String())
}
