// Package http implements the HTTP handlers of the measurement report
// service. It is a thin layer between transport and business logic: handlers
// parse requests, call BetService, and render responses.
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to RFC 7807 responses
//	4. No business logic - all pipeline rules belong in the service layer
package http
