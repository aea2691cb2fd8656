package server

import (
	"errors"
	"net/http"

	"github.com/dataquality/jsonvalidator/internal/binder"
	"github.com/dataquality/jsonvalidator/internal/registry"
	"github.com/dataquality/jsonvalidator/internal/validation"
)

// statusFor maps a validation/registry error to the HTTP status code
// spec.md §7 assigns it. The upload path and the validate path classify
// DescriptorDecodeError differently (400 on upload, 500 on rebuild), so
// onUpload selects which table applies.
func statusFor(err error, onUpload bool) int {
	if err == nil {
		return http.StatusOK
	}

	var badDescriptor *registry.BadDescriptorError
	if errors.As(err, &badDescriptor) {
		if onUpload {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}

	var linkErr *registry.DescriptorLinkError
	if errors.As(err, &linkErr) {
		return http.StatusInternalServerError
	}

	var bindErr *binder.BindError
	if errors.As(err, &bindErr) {
		return http.StatusBadRequest
	}

	var serErr *binder.SerializationError
	if errors.As(err, &serErr) {
		return http.StatusInternalServerError
	}

	var unknownMsg *validation.ErrUnknownMessage
	if errors.As(err, &unknownMsg) {
		return http.StatusBadRequest
	}

	var badRequest *validation.ErrBadRequest
	if errors.As(err, &badRequest) {
		return http.StatusBadRequest
	}

	var fieldMissing *validation.ErrFieldMissing
	if errors.As(err, &fieldMissing) {
		return http.StatusBadRequest
	}

	var fieldMismatch *validation.ErrFieldValueMismatch
	if errors.As(err, &fieldMismatch) {
		return http.StatusBadRequest
	}

	var parseErr *validation.ErrJSONParse
	if errors.As(err, &parseErr) {
		return http.StatusBadRequest
	}

	var unescapeErr *validation.ErrJSONUnescape
	if errors.As(err, &unescapeErr) {
		return http.StatusBadRequest
	}

	if errors.Is(err, ErrSaturated) {
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}
