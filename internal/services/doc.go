// Package services implements the business logic layer of the measurement
// report application. It provides a clean separation between HTTP handlers
// and the core extraction, fit, plot and report packages, ensuring that
// pipeline rules are centralized and testable.
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Error handling and transformation at the boundary
//
// Handlers never touch the extractor, store or notebook directly; they go
// through BetService, which owns stage transitions and metrics.
package services
