package testutil

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

// CallRecord holds the arguments and timing of a single recorded call.
type CallRecord struct {
	Args  []cty.Value
	Start time.Time
	End   time.Time
}
