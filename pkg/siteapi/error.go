package siteapi

import (
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
)

// ErrMalformedBackupID indicates a backup id that does not follow the
// <scheduled>_<archive>_<type> naming scheme.
var ErrMalformedBackupID = errors.New("malformed backup id")

// ErrUnsupportedBackupType indicates a backup whose type has no restore
// workflow.
var ErrUnsupportedBackupType = errors.New("This backup has no archive to restore.")

// ErrorResponse is the error envelope the API server returns on non-2xx
// status codes.
type ErrorResponse struct {
	StatusCode int
	Message    string
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("server error: %s, status: %d", e.Message, e.StatusCode)
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	buf, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ioutil.ReadAll(): %w", err)
	}
	return &ErrorResponse{StatusCode: resp.StatusCode, Message: string(buf)}
}
