// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the internal application services, translating HTTP concerns to
// business operations.
//
// Users leave the API only as UserResponse and tasks only as TaskResponse,
// so credential hashes, tokens and avatar bytes never reach a response body.
package api
