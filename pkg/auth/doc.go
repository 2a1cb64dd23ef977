// Package auth provides the identity model, credential hashing, and the
// signed session token scheme shared by the server and the client.
//
// # Token Scheme
//
// Session tokens are HS256 JWTs whose claims carry exactly the subject id.
// There is no expiry or issued-at claim: a token stays valid until the
// signing key changes or the subject record is deleted. Logout is purely
// client-side; the server keeps no revocation state.
//
// # Error Taxonomy
//
// All request-level failures are classified by a Kind and converted to the
// uniform {success:false, message} payload at the API boundary. Transport
// status stays 200 for logical failures.
package auth
