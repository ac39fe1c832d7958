package domain

import "github.com/kailas-cloud/ragdex/internal/schema"

// Generation is the outcome of one chat completion call.
// Usage is nil when the provider reported no token accounting.
type Generation struct {
	Answer string
	Usage  *schema.TokenUsage
}
