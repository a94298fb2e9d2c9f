package port

import (
	"context"
	"encoding/json"
)

// ExtractInput carries one image payload for a vision extraction call.
type ExtractInput struct {
	ImageBytes  []byte
	ContentType string
	Instruction string
}

// VisionExtractor abstracts one call to the hosted multimodal model. It
// returns the provider's raw, untyped JSON output; it performs no retries
// and no schema enforcement.
type VisionExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (json.RawMessage, error)
}
