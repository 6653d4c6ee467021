package md

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	referenceNotFoundCode = "REFERENCE_NOT_FOUND"
	invalidPMIDCode       = "REFERENCE_INVALID_PMID"
	macroArgumentsCode    = "MACRO_INVALID_ARGUMENTS"
)

var (
	// ErrReferenceNotFound is returned when a [REF] cites an id that was never
	// introduced with a pmid or reference_text.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrInvalidPMID is returned when a pmid value is not an integer.
	ErrInvalidPMID = errors.New("invalid pmid")
	// ErrUnexpectedArgument is returned when a macro receives an argument it does not accept.
	ErrUnexpectedArgument = errors.New("unexpected macro argument")
	// ErrMissingArgument is returned when a required macro argument is absent.
	ErrMissingArgument = errors.New("missing macro argument")
	// ErrCaptionPlaceholder is returned when the image template does not emit the
	// caption placeholder exactly once.
	ErrCaptionPlaceholder = errors.New("image template must contain the caption placeholder exactly once")
	// ErrNoArticleSource is returned by article_list when the pipeline has no article tree.
	ErrNoArticleSource = errors.New("no article source configured")
)

func referenceNotFound(id string) error {
	return goerrors.Wrap(fmt.Errorf("%w: id %q", ErrReferenceNotFound, id), goerrors.CategoryValidation,
		fmt.Sprintf("reference %q cited before it was defined with a pmid or reference_text", id)).
		WithTextCode(referenceNotFoundCode)
}

func invalidPMID(id, value string) error {
	return goerrors.Wrap(fmt.Errorf("%w: %q", ErrInvalidPMID, value), goerrors.CategoryValidation,
		fmt.Sprintf("reference %q has a non-numeric pmid", id)).
		WithTextCode(invalidPMIDCode)
}

func macroArgumentError(macro string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation,
		fmt.Sprintf("macro %q called with invalid arguments", macro)).
		WithTextCode(macroArgumentsCode)
}
