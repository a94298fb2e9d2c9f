package pipeline

import (
	"encoding/base64"
	"fmt"
	"strings"

	"shelfscan/internal/domain"
)

// ParseDataURI decodes a "data:<mime>;base64,<data>" payload into its MIME
// type and raw bytes. Empty or structurally broken payloads are rejected here,
// before any provider call.
func ParseDataURI(s string) (contentType string, data []byte, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil, domain.ErrEmptyPayload
	}

	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", domain.ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", domain.ErrInvalidDataURI)
	}
	contentType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", domain.ErrInvalidDataURI)
	}
	if !domain.AllowedImageTypes[contentType] {
		return "", nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImageType, contentType)
	}

	data, decodeErr := base64.StdEncoding.DecodeString(payload)
	if decodeErr != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrInvalidDataURI, decodeErr)
	}
	if len(data) == 0 {
		return "", nil, domain.ErrEmptyPayload
	}
	return contentType, data, nil
}
