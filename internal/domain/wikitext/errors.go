package wikitext

import "errors"

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrParamNotFound    = errors.New("template parameter not found")
	ErrUnbalanced       = errors.New("unbalanced template braces")
)
