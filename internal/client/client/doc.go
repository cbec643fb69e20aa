// Package client contains the client side of the postbox HTTP API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): account
//     registration and login, listing, reading, sending and deleting
//     messages.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that keeps the
//     access and refresh tokens in memory, sends the access token as a bearer
//     header and, on a 401, refreshes once and retries the request. Ping
//     checks the server's health endpoint.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound. Rejected input comes
// back as *APIError, which carries the server's per-field messages.
//
// # Concurrency
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package client
