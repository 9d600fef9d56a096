package lark

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField is returned when a successful response lacks a field the
// caller depends on, such as an upload's file token.
var ErrMissingField = errors.New("response is missing an expected field")

// APIError is a failed platform call that produced a response.
type APIError struct {
	// Op names the client method, e.g. "upload_media"
	Op string

	StatusCode int
	Code       int
	Msg        string

	// Body is the raw response body, if any
	Body json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lark %s failed: status=%d code=%d msg=%s", e.Op, e.StatusCode, e.Code, e.Msg)
}

// Payload returns the platform's error body when it is valid JSON, otherwise
// a synthesized {"code":..,"msg":..} object.
func (e *APIError) Payload() json.RawMessage {
	if len(e.Body) > 0 && json.Valid(e.Body) {
		return e.Body
	}
	b, _ := json.Marshal(struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}{Code: e.Code, Msg: e.Msg})
	return b
}

// envelope is the common {code, msg, data} shape of platform responses.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// checkResponse converts a raw response into an *APIError when the HTTP
// status or the platform code signals failure.
func checkResponse(op string, status int, body []byte) (*envelope, error) {
	var env envelope
	parseErr := json.Unmarshal(body, &env)
	if status >= 400 || (parseErr == nil && env.Code != 0) {
		return nil, &APIError{
			Op:         op,
			StatusCode: status,
			Code:       env.Code,
			Msg:        env.Msg,
			Body:       append(json.RawMessage(nil), body...),
		}
	}
	if parseErr != nil {
		return nil, fmt.Errorf("lark %s: decode response: %w", op, parseErr)
	}
	return &env, nil
}

// DataOrBody returns the data object of a response when present, else the
// whole body.
func DataOrBody(body []byte) json.RawMessage {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data
	}
	return append(json.RawMessage(nil), body...)
}
