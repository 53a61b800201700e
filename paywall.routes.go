// Package paywall provides x402 payment middleware for Go web applications.
//
// This file implements route pattern matching and request path normalization.
// A request reaches the matcher with up to three diverging notions of its
// path: the framework's normalized path, the raw request URL and the
// configured pattern. normalizeRequestPath and matchRoute reconcile them.
package paywall

import (
	"strings"
)

// compiledRoute is a parsed RouteConfig pattern ready for matching.
type compiledRoute struct {
	method   string // uppercase verb, "" matches any method
	segments []string
	wildcard bool // trailing "/*": segments is the required prefix
	matchAll bool // bare "*" pattern
	route    *RouteConfig
}

// routeTable holds compiled routes in declaration order. First match wins,
// so more specific patterns should be declared first.
type routeTable struct {
	routes []*compiledRoute
}

// compileRoutePatterns parses all configured route patterns.
func compileRoutePatterns(routes []RouteConfig) (*routeTable, error) {
	table := &routeTable{routes: make([]*compiledRoute, 0, len(routes))}
	for i := range routes {
		compiled, err := compileRoutePattern(&routes[i])
		if err != nil {
			return nil, err
		}
		table.routes = append(table.routes, compiled)
	}
	return table, nil
}

// compileRoutePattern parses a single pattern of the form
// "[METHOD ]/path/:param/*".
func compileRoutePattern(route *RouteConfig) (*compiledRoute, error) {
	pattern := strings.TrimSpace(route.Pattern)
	if pattern == "" || len(pattern) > MAX_ROUTE_PATTERN_LEN {
		return nil, WrapErrorf(ErrInvalidRoutePattern, "pattern %q", route.Pattern)
	}

	compiled := &compiledRoute{route: route}

	// Optional verb prefix: "GET /api/report"
	if idx := strings.IndexByte(pattern, ' '); idx > 0 {
		verb := strings.ToUpper(pattern[:idx])
		rest := strings.TrimSpace(pattern[idx+1:])
		if !isHTTPMethod(verb) || rest == "" {
			return nil, WrapErrorf(ErrInvalidRoutePattern, "pattern %q", route.Pattern)
		}
		compiled.method = verb
		pattern = rest
	}

	if pattern == ROUTE_WILDCARD_ALL {
		compiled.matchAll = true
		return compiled, nil
	}

	if !strings.HasPrefix(pattern, "/") {
		return nil, WrapErrorf(ErrInvalidRoutePattern, "pattern %q must start with '/'", route.Pattern)
	}

	if strings.HasSuffix(pattern, ROUTE_WILDCARD_SUFFIX) {
		compiled.wildcard = true
		pattern = strings.TrimSuffix(pattern, ROUTE_WILDCARD_SUFFIX)
	}

	pattern = normalizeRequestPath(pattern)
	if pattern == "/" {
		compiled.segments = nil
	} else {
		compiled.segments = strings.Split(strings.TrimPrefix(pattern, "/"), "/")
	}

	// "*" is only valid as a trailing wildcard
	for _, seg := range compiled.segments {
		if strings.Contains(seg, ROUTE_WILDCARD_ALL) {
			return nil, WrapErrorf(ErrInvalidRoutePattern, "pattern %q", route.Pattern)
		}
	}

	return compiled, nil
}

// matchRoute returns the first route matching method and path, or nil.
// path must already be normalized via normalizeRequestPath.
func (t *routeTable) matchRoute(method, path string) *RouteConfig {
	if t == nil {
		return nil
	}
	segments := splitPathSegments(path)
	for _, compiled := range t.routes {
		if compiled.matches(method, segments) {
			return compiled.route
		}
	}
	return nil
}

func (c *compiledRoute) matches(method string, segments []string) bool {
	if c.method != "" && c.method != strings.ToUpper(method) {
		return false
	}
	if c.matchAll {
		return true
	}
	if c.wildcard {
		// The wildcard stands for at least one segment: "/api/premium/*"
		// covers "/api/premium/report" but not "/api/premium" itself.
		if len(segments) <= len(c.segments) {
			return false
		}
	} else if len(segments) != len(c.segments) {
		return false
	}
	for i, patternSeg := range c.segments {
		if strings.HasPrefix(patternSeg, ROUTE_PARAM_PREFIX) {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if patternSeg != segments[i] {
			return false
		}
	}
	return true
}

// normalizeRequestPath reduces a request path (or raw URL path portion) to
// a canonical form: query and fragment stripped, duplicate slashes
// collapsed, trailing slash removed (except for the root path).
func normalizeRequestPath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if idx := strings.IndexByte(path, '#'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func splitPathSegments(path string) []string {
	if path == "" || path == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// requestPath picks the most reliable path notion the framework offers.
// Fiber's Path() is already normalized; when a framework reports an empty
// path (middleware mounted before routing) we fall back to the raw URL.
func requestPath(framework HTTPFramework, c interface{}) string {
	path := framework.GetRequestPath(c)
	if path == "" {
		path = framework.GetRequestURL(c)
	}
	return normalizeRequestPath(path)
}

func isHTTPMethod(verb string) bool {
	switch verb {
	case "GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS":
		return true
	}
	return false
}
