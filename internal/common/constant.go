// Package common contains shared constants and sentinel errors used across
// profilekeeper components.
package common

// AuthorizationHeaderName is the HTTP header carrying the access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the access token inside the Authorization header.
const BearerScheme = "Bearer"

// RequestIDHeaderName carries the per-request correlation id.
const RequestIDHeaderName = "X-Request-ID"
