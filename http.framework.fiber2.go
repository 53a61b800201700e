package paywall

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type FiberFramework struct{}

func (f *FiberFramework) GetRequestHeader(r interface{}, key string) string {
	return r.(*fiber.Ctx).Get(key)
}

func (f *FiberFramework) SetResponseHeader(w interface{}, key, value string) {
	w.(*fiber.Ctx).Set(key, value)
}

func (f *FiberFramework) GetRequestMethod(r interface{}) string {
	return r.(*fiber.Ctx).Method()
}

// GetRequestPath returns Fiber's normalized request path (no query string).
func (f *FiberFramework) GetRequestPath(r interface{}) string {
	return r.(*fiber.Ctx).Path()
}

// GetRoutePath returns the matched route template, e.g. "/api/files/:id".
// Empty when called from middleware registered before routing.
func (f *FiberFramework) GetRoutePath(r interface{}) string {
	route := r.(*fiber.Ctx).Route()
	if route == nil {
		return ""
	}
	return route.Path
}

// GetRequestURL returns the raw request URI including the query string.
func (f *FiberFramework) GetRequestURL(r interface{}) string {
	return r.(*fiber.Ctx).OriginalURL()
}

func (f *FiberFramework) WriteResponse(w interface{}, status int, body []byte) error {
	return w.(*fiber.Ctx).Status(status).Send(body)
}

func (f *FiberFramework) GetRequestContext(r interface{}) context.Context {
	return r.(*fiber.Ctx).UserContext()
}

func (f *FiberFramework) SetContextValue(r interface{}, key, value interface{}) {
	ctx := r.(*fiber.Ctx)
	if keyStr, ok := key.(string); ok {
		ctx.Locals(keyStr, value)
		return
	}
	newCtx := context.WithValue(ctx.UserContext(), key, value)
	ctx.SetUserContext(newCtx)
}

func (f *FiberFramework) GetContextValue(r interface{}, key interface{}) interface{} {
	ctx := r.(*fiber.Ctx)
	if keyStr, ok := key.(string); ok {
		if value := ctx.Locals(keyStr); value != nil {
			return value
		}
	}
	return ctx.UserContext().Value(key)
}

func (f *FiberFramework) Name() string {
	return FRAMEWORK_FIBER
}
