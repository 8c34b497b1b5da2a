package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/baxromumarov/country-explorer/internal/httpx"
)

const (
	ErrorNetwork   = "network"
	ErrorTimeout   = "timeout"
	ErrorRateLimit = "rate_limit"
	ErrorStatus    = "status"
	ErrorDecode    = "decode"
	ErrorUnknown   = "unknown"
)

// ClassifyFetchError buckets an outbound failure for metrics and logs.
func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if errors.Is(err, httpx.ErrRateLimited) {
		return ErrorRateLimit
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrorTimeout
	}

	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		switch {
		case fe.Status == http.StatusTooManyRequests:
			return ErrorRateLimit
		case fe.Status >= 400:
			return ErrorStatus
		}
		if isDecodeError(fe.Err) {
			return ErrorDecode
		}
		return ErrorNetwork
	}
	if isDecodeError(err) {
		return ErrorDecode
	}
	return ErrorUnknown
}

func isDecodeError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "decode") ||
		strings.Contains(msg, "unmarshal") ||
		strings.Contains(msg, "invalid character")
}
