// Package backend provides the Peerwave API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/social: Social mutation engine (posts, likes, comments, notifications)
// - internal/prices: Cached cryptocurrency price lookups
// - internal/ai: AI chat provider client
// - internal/storage: File storage (S3) operations
// - internal/database: Database connection and migrations
// - internal/cleanup: Guest account retention sweeper
// - internal/middleware: HTTP middleware (rate limiting, etc.)
// - internal/cache: Redis connection for distributed rate limiting
// - internal/validation: Input validation and sanitization
// - internal/apperr: API error taxonomy

// See the individual package documentation for detailed API reference.
package backend
