// Package users owns user identity records: registration, credential
// verification, and subject resolution for the auth gate. It is the only
// package with durable identity state.
package users
