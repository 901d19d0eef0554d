package protocol

import "errors"

// -- Sentinels --

var (
	ErrEmptyResponse     = errors.New("response text is empty")
	ErrMalformedResponse = errors.New("response is not valid structured JSON")
)
