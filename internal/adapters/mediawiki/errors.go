package mediawiki

import "errors"

// Sentinel kinds for wiki API errors.
var (
	ErrTransport          = errors.New("wiki transport failure")
	ErrAPI                = errors.New("wiki api error")
	ErrUnexpectedResponse = errors.New("unexpected wiki response")
)
