// Package httputil provides standardized request/response handling for the
// JSON API.
//
// Every endpoint answers with a flat envelope:
//
//	{"success": true,  "token": "..."}          // payload fields vary
//	{"success": false, "message": "..."}
//
// Logical failures ride HTTP 200; the success field is the only failure
// signal the API clients look at. This matches the wire contract the web
// client was built against, so it is applied uniformly, including by the
// auth gate.
package httputil
