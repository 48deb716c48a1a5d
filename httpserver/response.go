package httpserver

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"movieapi/errs"
)

const (
	successMessage   = "OK"
	defaultErrorCode = "100500"
)

type APIResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Result  interface{} `json:"result,omitempty"`
}

func writeSuccess(c echo.Context, status int, result interface{}) error {
	return c.JSON(status, APIResponse{
		Code:    strconv.Itoa(status),
		Message: successMessage,
		Result:  result,
	})
}

func writeError(c echo.Context, status int, message string, err error) error {
	return c.JSON(status, APIResponse{
		Code:    errorCode(err, status),
		Message: message,
	})
}

func errorCode(err error, status int) string {
	switch errs.ErrorCode(err) {
	case errs.EINVALID:
		return "100010"
	case errs.EUNPROCESSABLE:
		return "100422"
	case errs.ENOTFOUND:
		return "100404"
	case errs.ENOTIMPLEMENTED:
		return "100501"
	}

	if status != 0 {
		return fmt.Sprintf("100%03d", status)
	}
	return defaultErrorCode
}
