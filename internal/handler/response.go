package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidverse/user-service/internal/service"
)

// envelope is the uniform response shape. Success responses carry data,
// failure responses carry a message and an (often empty) error list.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func failWith(c echo.Context, status int, message string) error {
	return c.JSON(status, envelope{Success: false, Message: message, Errors: []string{}})
}

// fail maps a service error kind to an HTTP status and renders the
// failure envelope. Unknown errors become an opaque 500.
func fail(c echo.Context, err error) error {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		return failWith(c, http.StatusInternalServerError, "something went wrong")
	}
	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindAuthentication:
		status = http.StatusUnauthorized
	case service.KindUpload:
		status = http.StatusBadGateway
	}
	return failWith(c, status, svcErr.Message)
}
