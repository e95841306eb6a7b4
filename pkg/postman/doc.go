// Package postman provides a thin client for the Postman API resources that
// syncman manages.
//
// # Overview
//
// The client exposes one method per remote resource operation and funnels
// every call through a single request executor. It is stateless apart from
// its configuration: the API key and the workspace id are fixed at
// construction time.
//
// # Resources
//
// Workspaces:
//   - GET  /workspaces/:id
//
// APIs:
//   - GET  /apis
//   - POST /apis?workspace=:id
//
// Versions:
//   - GET  /apis/:api/versions
//   - GET  /apis/:api/versions/:version
//   - POST /apis/:api/versions
//
// Schemas:
//   - POST /apis/:api/versions/:version/schemas
//   - PUT  /apis/:api/versions/:version/schemas/:schema
//
// Collections and relations:
//   - POST /apis/:api/versions/:version/schemas/:schema/collections?workspace=:id
//   - GET  /apis/:api/versions/:version/documentation
//   - PUT  /collections/:id
//
// # Error Handling
//
// Each call is attempted exactly once. Lookups that find nothing return a nil
// value and a nil error. Any non-2xx response is returned as an *APIError
// carrying the status code and the error payload sent by Postman, so a
// failed call can never be mistaken for a successful empty result.
//
// # Security
//
//   - The API key is sent in the X-Api-Key header on every call
//   - The API key is never logged or serialized to JSON
package postman
