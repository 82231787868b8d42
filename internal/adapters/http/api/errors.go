package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/mediawiki"
	eventqueue "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/mq/queue"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/repository"
	service "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/app"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/codec"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/normalize"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/wikitext"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// opError tags an error with the handler operation that produced it.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
}

func (e *opError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// NewKind returns an error of the given kind for op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// WrapKind classifies err under kind for op.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// Wrap annotates err with op, keeping its kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// classify maps an error to its HTTP status and response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, codec.ErrMalformedEventRecord),
		errors.Is(err, normalize.ErrUnknownKind),
		errors.Is(err, normalize.ErrUnknownGoalType),
		errors.Is(err, model.ErrUnknownKind),
		errors.Is(err, model.ErrUnknownModifier),
		errors.Is(err, model.ErrModifierNotAllowed),
		errors.Is(err, model.ErrNegativeMinute),
		errors.Is(err, wikitext.ErrUnbalanced):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrBackpressure),
		errors.Is(err, service.ErrBackpressure),
		errors.Is(err, eventqueue.ErrFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_started"
	case errors.Is(err, repository.ErrEditConflict):
		return http.StatusConflict, "edit_conflict"
	case isNotFound(err):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, mediawiki.ErrTransport),
		errors.Is(err, mediawiki.ErrAPI),
		errors.Is(err, mediawiki.ErrUnexpectedResponse):
		return http.StatusBadGateway, "wiki_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, service.ErrRunNotFound) ||
		errors.Is(err, wikitext.ErrTemplateNotFound) ||
		errors.Is(err, wikitext.ErrParamNotFound) ||
		strings.Contains(strings.ToLower(err.Error()), "not found")
}
