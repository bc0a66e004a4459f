// Package httpclient provides the HTTP client shared by all provider
// adapters: bearer and API-key auth, multipart bodies for audio uploads,
// retry for transient failures, and classification of response status codes
// into typed errors that the orchestrator translates into user-facing
// categories.
package httpclient
