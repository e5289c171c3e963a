package ident

import "sync/atomic"

// Sequence is a monotonically increasing counter safe for concurrent use.
//
// Every value returned by Next is distinct and strictly greater than all
// values previously returned by the same Sequence.
type Sequence struct {
	n atomic.Uint32
}

// NewSequence returns a Sequence whose first Next value is start+1.
func NewSequence(start uint32) *Sequence {
	s := &Sequence{}
	s.n.Store(start)
	return s
}

func (s *Sequence) Next() uint32 { return s.n.Add(1) }

// Current returns the last issued value.
func (s *Sequence) Current() uint32 { return s.n.Load() }

// Minter hands out fresh identifiers backed by a shared Sequence.
type Minter struct {
	Seq *Sequence
}

// NewMinter returns a Minter over a new Sequence starting at zero.
func NewMinter() *Minter { return &Minter{Seq: NewSequence(0)} }

// ExGuid mints a globally fresh ExGuid.
func (m *Minter) ExGuid() ExGuid {
	return ExGuid{Serial: m.Seq.Next(), ID: NewGuid()}
}

// SerialNumber mints a fresh serial number under a new instance GUID.
func (m *Minter) SerialNumber() SerialNumber {
	return SerialNumber{InstanceID: NewGuid(), Sequence: m.Seq.Next()}
}
