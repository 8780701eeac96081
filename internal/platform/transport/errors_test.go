package transport_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "healthdash/internal/platform/errors"
	"healthdash/internal/platform/transport"
)

func TestErrorMessagePriority(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "detail wins", body: `{"detail":"Stats not found","message":"other"}`, want: "Stats not found"},
		{name: "message fallback", body: `{"message":"Bad things"}`, want: "Bad things"},
		{name: "null detail falls through", body: `{"detail":null,"message":"m"}`, want: "m"},
		{name: "validation array", body: `{"detail":[{"loc":["body","steps"],"msg":"field required","type":"value_error.missing"},{"msg":"value is not a valid float"}]}`, want: "field required; value is not a valid float"},
		{name: "no known fields", body: `{"error":"x"}`, want: "Bad Request"},
		{name: "not json", body: `<html></html>`, want: "Bad Request"},
		{name: "json array", body: `[1,2]`, want: "Bad Request"},
		{name: "empty", body: ``, want: "Bad Request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, transport.ErrorMessage([]byte(tc.body), "Bad Request"))
		})
	}
}

func TestRequestErrorMatchesSentinelsOnlyForHTTPKind(t *testing.T) {
	t.Parallel()
	unprocessable := &transport.RequestError{Kind: transport.KindHTTP, Status: 422, Message: "field required"}
	assert.True(t, errors.Is(unprocessable, apperrors.ErrInvalidInput))
	assert.False(t, errors.Is(unprocessable, apperrors.ErrNotFound))

	decode := &transport.RequestError{Kind: transport.KindDecode, Status: 404}
	assert.False(t, errors.Is(decode, apperrors.ErrNotFound))

	wrapped := fmt.Errorf("list records: %w", &transport.RequestError{Kind: transport.KindHTTP, Status: 401})
	reqErr, ok := transport.AsRequestError(wrapped)
	assert.True(t, ok)
	assert.True(t, reqErr.Unauthorized())

	_, ok = transport.AsRequestError(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "http", transport.KindHTTP.String())
	assert.Equal(t, "transport", transport.KindTransport.String())
	assert.Equal(t, "decode", transport.KindDecode.String())
}
