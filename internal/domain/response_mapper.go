package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/cockroachdb/errors"
)

// DefaultResponseMapper is the default implementation of ResponseMapper.
type DefaultResponseMapper struct{}

// NewResponseMapper creates a new instance of DefaultResponseMapper.
func NewResponseMapper() ResponseMapper {
	return &DefaultResponseMapper{}
}

// ErrorEnvelope is the JSON body of a failed tool call.
type ErrorEnvelope struct {
	Error   bool        `json:"error"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// MapToToolResponse serializes the projection as indented JSON in a single text block.
func (m *DefaultResponseMapper) MapToToolResponse(result interface{}) (*ToolResponse, error) {
	if result == nil {
		return NewTextResponse("{}"), nil
	}

	text, err := encodeJSON(result, "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal tool result")
	}
	return NewTextResponse(text), nil
}

// MapError converts an error into the uniform error envelope.
func (m *DefaultResponseMapper) MapError(err error) *ToolResponse {
	envelope := ClassifyError(err)

	text, mErr := encodeJSON(envelope, "")
	if mErr != nil {
		// details came from upstream and could not be encoded; keep the message
		envelope.Details = err.Error()
		text, _ = encodeJSON(envelope, "")
	}

	resp := NewTextResponse(text)
	resp.IsError = true
	return resp
}

// ClassifyError maps an error raised while serving a tool call to its envelope.
// Validation failures enumerate every offending field; remote failures surface
// the upstream body, or the error string when the body is empty.
func ClassifyError(err error) *ErrorEnvelope {
	if err == nil {
		return nil
	}

	var (
		validationErr *ValidationError
		configErr     *ConfigError
		unknownErr    *UnknownToolError
		httpErr       HTTPError
		rpcErr        *Error
		netErr        net.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return &ErrorEnvelope{
			Error:   true,
			Code:    InvalidParams,
			Message: validationErr.Error(),
			Details: validationErr.Issues,
		}
	case errors.Is(err, ErrMissingAgentID):
		return &ErrorEnvelope{
			Error:   true,
			Code:    InvalidParams,
			Message: ErrMissingAgentID.Error(),
			Details: ErrMissingAgentID.Error(),
		}
	case errors.As(err, &configErr):
		return &ErrorEnvelope{
			Error:   true,
			Code:    ConfigurationError,
			Message: configErr.Message,
			Details: configErr.Message,
		}
	case errors.As(err, &unknownErr):
		return &ErrorEnvelope{
			Error:   true,
			Code:    MethodNotFound,
			Message: unknownErr.Error(),
			Details: unknownErr.Error(),
		}
	case errors.As(err, &httpErr):
		mapped := mapHTTPError(httpErr)
		return &ErrorEnvelope{
			Error:   true,
			Code:    mapped.Code,
			Message: fmt.Sprintf("%s: HTTP %d %s", mapped.Message, httpErr.StatusCode, httpErr.Message),
			Details: httpErr.Details(),
		}
	case errors.As(err, &rpcErr):
		details := rpcErr.Data
		if details == nil {
			details = rpcErr.Message
		}
		return &ErrorEnvelope{
			Error:   true,
			Code:    rpcErr.Code,
			Message: rpcErr.Message,
			Details: details,
		}
	case errors.As(err, &netErr):
		return &ErrorEnvelope{
			Error:   true,
			Code:    NetworkError,
			Message: err.Error(),
			Details: err.Error(),
		}
	default:
		return &ErrorEnvelope{
			Error:   true,
			Code:    InternalError,
			Message: err.Error(),
			Details: err.Error(),
		}
	}
}

// encodeJSON marshals v without HTML escaping so text previews survive verbatim.
func encodeJSON(v interface{}, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// HTTPError represents an HTTP error with status code and message.
// This is used to wrap non-2xx responses from the Letta API.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface for HTTPError.
func (e HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Message, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Details returns the upstream body, decoded when it is JSON, or the error string
// when the body is empty.
func (e HTTPError) Details() interface{} {
	if e.Body == "" {
		return e.Error()
	}
	if json.Valid([]byte(e.Body)) {
		return json.RawMessage(e.Body)
	}
	return e.Body
}

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(statusCode int, message string, body string) HTTPError {
	return HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Body:       body,
	}
}

// mapHTTPError maps HTTP status codes to JSON-RPC error codes.
func mapHTTPError(httpErr HTTPError) *Error {
	var code int
	var message string

	switch httpErr.StatusCode {
	case http.StatusUnauthorized:
		code = AuthenticationError
		message = "Authentication failed"
	case http.StatusForbidden:
		code = AuthenticationError
		message = "Access forbidden - insufficient permissions"
	case http.StatusNotFound:
		code = APIError
		message = "Resource not found"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = InvalidParams
		message = "Bad request - invalid parameters"
	case http.StatusConflict:
		code = APIError
		message = "Conflict - resource already exists or was modified"
	case http.StatusTooManyRequests:
		code = RateLimitError
		message = "Rate limit exceeded"
	case http.StatusServiceUnavailable:
		code = NetworkError
		message = "Service unavailable"
	case http.StatusGatewayTimeout:
		code = NetworkError
		message = "Gateway timeout"
	default:
		if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
			code = APIError
			message = "Client error"
		} else if httpErr.StatusCode >= 500 {
			code = APIError
			message = "Server error"
		} else {
			code = InternalError
			message = "Unexpected response"
		}
	}

	return &Error{
		Code:    code,
		Message: message,
		Data: map[string]interface{}{
			"statusCode": httpErr.StatusCode,
			"message":    httpErr.Message,
		},
	}
}
