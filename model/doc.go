// Package model defines stable boundary types for API layers.
//
// Element identity (ExGuids) and package bytes are unaffected by any
// projection. These structs are the only types intended for direct JSON/YAML
// serialization by consumers; identifiers appear in their String form.
package model
