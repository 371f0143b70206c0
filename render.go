// render.go: JSON rendering and error responses
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"errors"
	"net/http"

	goerrors "github.com/agilira/go-errors"
	"github.com/bytedance/sonic"
)

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// JSON writes value as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, value any) error {
	body, err := sonic.Marshal(value)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// Error writes err as an ErrorResponse. Coded errors map to their HTTP status
// and user message; anything else is a 500 without internal detail.
func Error(w http.ResponseWriter, err error) {
	status, message := errorStatus(err)
	_ = JSON(w, status, ErrorResponse{Message: message, StatusCode: status})
}

func errorStatus(err error) (int, string) {
	var coded *goerrors.Error
	if !errors.As(err, &coded) {
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}

	message := coded.UserMessage()
	switch coded.Code {
	case ErrCodeNotFound:
		return http.StatusNotFound, message
	case ErrCodeBadRequest, ErrCodeConfigValidationError, ErrCodeSettingsDecodeError:
		return http.StatusBadRequest, message
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized, message
	case ErrCodeManagerAlreadyStopped:
		return http.StatusServiceUnavailable, message
	default:
		return http.StatusInternalServerError, message
	}
}
