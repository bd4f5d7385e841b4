// Package common contains shared constants and sentinel errors used across
// the milk tracker server and CLI.
package common

// AuthorizationHeaderName carries the bearer credential on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the auth scheme prefix used in the Authorization header.
const BearerScheme = "Bearer"

// TokenStorageKey is the local metadata key that holds the access token.
const TokenStorageKey = "token"
