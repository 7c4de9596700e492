package orders

import (
	"fmt"
	"math/rand"
	"time"
)

// newOrderNumber builds the human-facing order number: an "ORD" prefix, the
// epoch milliseconds, and a 3-digit random suffix to break ties within the
// same millisecond.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD%d%03d", now.UnixMilli(), rand.Intn(1000))
}
