// Package requestid correlates one gateway request with the billing API calls
// it causes.
//
// Middleware accepts or assigns an X-Request-ID for every inbound request and
// stores it in the request context. The billing API client forwards the same
// ID through FromContextOrNew, and LoggerExtractor adds it to log records:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware)
//
// Client supplied IDs that are empty, longer than 128 characters or contain
// anything but letters, digits, '-' and '_' are replaced by a new UUID.
package requestid
