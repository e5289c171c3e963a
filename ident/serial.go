package ident

import "fmt"

// SerialNumber versions a mapping entry. It carries no identity; it is only
// compared for freshness.
type SerialNumber struct {
	InstanceID Guid
	Sequence   uint32
}

// Newer reports whether s supersedes o. Serial numbers from different
// instances are not comparable and never supersede each other.
func (s SerialNumber) Newer(o SerialNumber) bool {
	return s.InstanceID == o.InstanceID && s.Sequence > o.Sequence
}

func (s SerialNumber) String() string {
	return fmt.Sprintf("{%s}#%d", s.InstanceID, s.Sequence)
}
