// Package ident defines the identifier value types used as content-addressed
// keys throughout a revision-store package.
//
// All types have value semantics: equality is structural, so identifiers
// decoded independently from the wire compare equal and work as map keys.
package ident
