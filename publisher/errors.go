package publisher

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"zhihu_answer_publisher/target"
)

var (
	// ErrSubmitFailed is returned when Zhihu answers a submit with a status other than 200.
	ErrSubmitFailed = errors.New("submit failed")
	// ErrTransport is returned when a request never produced a response.
	ErrTransport = errors.New("transport error")
	// ErrUnsupportedTarget is returned for a target type other than question or answer.
	ErrUnsupportedTarget = errors.New("unsupported target type")
	// ErrDisplay is returned when the answer was published but its page could
	// not be shown.
	ErrDisplay = errors.New("display result page")
)

const (
	codeSelectionCancelled = "SELECTION_CANCELLED"
	codeSubmitFailed       = "SUBMIT_FAILED"
	codeTransport          = "TRANSPORT_ERROR"
	codeConfigInvalid      = "CONFIG_INVALID"
)

func wrapResolveError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, target.ErrSelectionCancelled) {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "target selection cancelled").
			WithTextCode(codeSelectionCancelled)
	}
	return goerrors.Wrap(fmt.Errorf("%w: %w", ErrTransport, err), goerrors.CategoryCommand, "resolve target").
		WithTextCode(codeTransport)
}

func submitFailed(uri string, status int) error {
	return goerrors.Wrap(fmt.Errorf("%w: %s returned %d", ErrSubmitFailed, uri, status),
		goerrors.CategoryCommand, "answer was not accepted").
		WithTextCode(codeSubmitFailed)
}

func transportError(op string, err error) error {
	return goerrors.Wrap(fmt.Errorf("%w: %s: %w", ErrTransport, op, err),
		goerrors.CategoryCommand, op+" failed").
		WithTextCode(codeTransport)
}

// Code returns the text code for err, or "" when err is not one of the
// publish failures.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, target.ErrSelectionCancelled):
		return codeSelectionCancelled
	case errors.Is(err, ErrSubmitFailed):
		return codeSubmitFailed
	case errors.Is(err, ErrTransport):
		return codeTransport
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		return codeConfigInvalid
	default:
		return ""
	}
}
