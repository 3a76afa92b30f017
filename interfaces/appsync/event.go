// Package appsync dispatches managed-API resolver invocations to the domain
// services. Each invocation names a field, carries JSON arguments, and comes
// with an identity the managed API has already verified.
package appsync

import "encoding/json"

// Identity is the verified caller identity attached to a resolver event.
// Only the subject matters downstream.
type Identity struct {
	Sub      string `json:"sub"`
	Username string `json:"username,omitempty"`
}

// ResolveEvent is the payload the managed API sends per resolver invocation.
type ResolveEvent struct {
	Field     string          `json:"field"`
	Arguments json.RawMessage `json:"arguments"`
	Identity  Identity        `json:"identity"`
}
