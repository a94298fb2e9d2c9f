package domain

import "errors"

var (
	ErrEmptyPayload         = errors.New("image payload is empty")
	ErrInvalidDataURI       = errors.New("invalid image data URI")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrScanNotFound         = errors.New("scan not found")
	ErrScanNotPending       = errors.New("scan is not awaiting review")
	ErrInvalidDecision      = errors.New("invalid price decision")
	ErrProductNotFound      = errors.New("product not found")
)
