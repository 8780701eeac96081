package transport

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	apperrors "healthdash/internal/platform/errors"
)

type Kind int

const (
	// KindHTTP is a non-2xx response from the service.
	KindHTTP Kind = iota
	// KindTransport is a failure to reach the service at all.
	KindTransport
	// KindDecode is a 2xx response whose body is not the expected JSON.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// RequestError is the only error shape transport and gateways hand back to callers.
// Message is always human readable and safe to show verbatim.
type RequestError struct {
	Kind    Kind
	Status  int
	Message string
	Raw     []byte
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is lets callers match service responses against the shared sentinels.
func (e *RequestError) Is(target error) bool {
	if e.Kind != KindHTTP {
		return false
	}
	switch target {
	case apperrors.ErrNotFound:
		return e.Status == http.StatusNotFound
	case apperrors.ErrNotAuthenticated:
		return e.Status == http.StatusUnauthorized
	case apperrors.ErrInvalidInput:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	}
	return false
}

func (e *RequestError) Unauthorized() bool {
	return e.Kind == KindHTTP && e.Status == http.StatusUnauthorized
}

// AsRequestError unwraps err to a *RequestError when there is one.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// ErrorMessage picks the message for a failed response: the body's "detail",
// then its "message", then statusText. Array details (request validation
// failures) are flattened to their "msg" entries.
func ErrorMessage(body []byte, statusText string) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return statusText
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return statusText
	}
	for _, field := range []string{"detail", "message"} {
		if msg := fieldMessage(parsed.Get(field)); msg != "" {
			return msg
		}
	}
	return statusText
}

func fieldMessage(v gjson.Result) string {
	switch {
	case !v.Exists():
		return ""
	case v.Type == gjson.String:
		return v.String()
	case v.IsArray():
		parts := make([]string, 0, len(v.Array()))
		v.ForEach(func(_, item gjson.Result) bool {
			if msg := item.Get("msg"); msg.Exists() && msg.String() != "" {
				parts = append(parts, msg.String())
			} else if s := item.String(); s != "" {
				parts = append(parts, s)
			}
			return true
		})
		return strings.Join(parts, "; ")
	case v.Type == gjson.Null, v.Type == gjson.False:
		return ""
	default:
		return v.Raw
	}
}
