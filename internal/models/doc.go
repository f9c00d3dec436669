// Package models defines the wire models exchanged with the ledger service.
//
// Every response body from the service is wrapped in an envelope that the
// apiclient package removes; the types here describe the payloads inside it.
//
// # Identifiers
//
// The service emits identifiers either as plain strings or as a tagged binary
// UUID ({"Bytes": [...16 numbers], "Valid": true}). Fields of type ID resolve
// both shapes once, while decoding, into the canonical lowercase-hyphenated
// form. An invalid or malformed binary UUID decodes to the empty ID.
//
// # Amounts
//
// Monetary amounts stay strings ("12.34") on the wire. Use the money package
// to turn them into integer minor units before doing arithmetic.
//
// # Parties
//
// A party to an expense or settlement is either a registered user (UserID)
// or a pending invitee (PendingUserID). Exactly one of the two is set.
package models
