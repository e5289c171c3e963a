package ident

import (
	"fmt"
	"strconv"
	"strings"
)

// ExGuid is an extended GUID: a GUID paired with a serial number.
//
// The zero value is the null reference.
type ExGuid struct {
	Serial uint32
	ID     Guid
}

// NullExGuid marks "no base" / "no reference".
var NullExGuid ExGuid

// NewExGuid constructs an ExGuid from its parts.
func NewExGuid(serial uint32, id Guid) ExGuid {
	return ExGuid{Serial: serial, ID: id}
}

func (e ExGuid) IsNull() bool { return e == NullExGuid }

func (e ExGuid) Equal(o ExGuid) bool { return e == o }

// String renders the ExGuid as "{guid},serial".
func (e ExGuid) String() string {
	return fmt.Sprintf("{%s},%d", e.ID, e.Serial)
}

// ParseExGuid parses the String form.
func ParseExGuid(s string) (ExGuid, error) {
	i := strings.LastIndexByte(s, ',')
	if i < 0 {
		return NullExGuid, fmt.Errorf("ident: invalid exguid %q: missing serial", s)
	}
	serial, err := strconv.ParseUint(s[i+1:], 10, 32)
	if err != nil {
		return NullExGuid, fmt.Errorf("ident: invalid exguid %q: %w", s, err)
	}
	g, err := ParseGuid(strings.TrimSuffix(strings.TrimPrefix(s[:i], "{"), "}"))
	if err != nil {
		return NullExGuid, err
	}
	return ExGuid{Serial: uint32(serial), ID: g}, nil
}

func (e ExGuid) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *ExGuid) UnmarshalText(b []byte) error {
	v, err := ParseExGuid(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Less orders ExGuids by GUID bytes, then serial. Used only for deterministic output.
func (e ExGuid) Less(o ExGuid) bool {
	for i := range e.ID {
		if e.ID[i] != o.ID[i] {
			return e.ID[i] < o.ID[i]
		}
	}
	return e.Serial < o.Serial
}

// CellId identifies a cell (a named sub-stream) of a document.
type CellId struct {
	First  ExGuid
	Second ExGuid
}

func (c CellId) IsNull() bool { return c.First.IsNull() && c.Second.IsNull() }

func (c CellId) Equal(o CellId) bool { return c == o }

func (c CellId) String() string {
	return c.First.String() + ";" + c.Second.String()
}

// ParseCellId parses the String form.
func ParseCellId(s string) (CellId, error) {
	a, b, ok := strings.Cut(s, ";")
	if !ok {
		return CellId{}, fmt.Errorf("ident: invalid cell id %q", s)
	}
	first, err := ParseExGuid(a)
	if err != nil {
		return CellId{}, err
	}
	second, err := ParseExGuid(b)
	if err != nil {
		return CellId{}, err
	}
	return CellId{First: first, Second: second}, nil
}

func (c CellId) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CellId) UnmarshalText(b []byte) error {
	v, err := ParseCellId(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
