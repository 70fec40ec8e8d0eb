// Package server provides the HTTP side of moodset: a small router with middleware, a webhook receiver,
// a health check, and the Prometheus metrics endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Handlers
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// so a handler that answers several methods (like [WebhookHandler]) decides its own method policy.
//
// The webhook accepts any POST body, logs it, and answers with a JSON acknowledgement. It does not interpret
// the payload.
//
// # Lifecycle
//
// [Server.Serve] runs until its context is cancelled and then shuts down gracefully.
package server
