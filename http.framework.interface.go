package paywall

import (
	"context"
)

// HTTPFramework defines the interface for HTTP framework compatibility.
//
// The middleware needs three different views of "the current request path":
// the raw request URL (GetRequestURL), the framework's normalized path
// (GetRequestPath), and the framework's matched route template
// (GetRoutePath). They disagree in the presence of query strings, trailing
// slashes and route params, and the route matcher reconciles them.

type HTTPFramework interface {
	GetRequestHeader(r interface{}, key string) string
	SetResponseHeader(w interface{}, key, value string)
	GetRequestMethod(r interface{}) string
	GetRequestPath(r interface{}) string
	GetRoutePath(r interface{}) string
	GetRequestURL(r interface{}) string
	WriteResponse(w interface{}, status int, body []byte) error
	GetRequestContext(r interface{}) context.Context
	SetContextValue(r interface{}, key, value interface{})
	GetContextValue(r interface{}, key interface{}) interface{}
	Name() string
}
