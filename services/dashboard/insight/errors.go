package insight

import (
	"errors"
	"net/http"
)

var errMissingAPIKey = errors.New("missing API key for the summarization service")

type errStatusNotOK int

func (e errStatusNotOK) Error() string {
	return "non-2xx HTTP status code: " + http.StatusText(int(e))
}

type errTextNotFound string

func (e errTextNotFound) Error() string {
	return "JSON path not found in response: " + string(e)
}
