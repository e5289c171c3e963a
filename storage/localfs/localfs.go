package localfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"xdao.co/revstore/codec"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
	"xdao.co/revstore/storage"
)

// Store is a local filesystem-backed element store.
//
// Each element is one file holding its encoded bytes, keyed strictly by
// ExGuid and fanned out by the first two hex digits of the GUID. Files are
// written once and never rewritten.
type Store struct {
	root string
}

var _ storage.Store = (*Store)(nil)

// New constructs a filesystem store rooted at root. The directory will be created if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) Put(e element.DataElement) error {
	if e.ID.IsNull() {
		return storage.ErrInvalidID
	}
	b, err := codec.EncodeElement(e)
	if err != nil {
		return err
	}

	path := s.pathFor(e.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := os.ReadFile(path)
			if rerr != nil {
				// An unreadable existing file is treated as an immutability violation.
				return storage.ErrImmutable
			}
			if string(existing) != string(b) {
				return storage.ErrImmutable
			}
			return nil
		}
		return err
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func (s *Store) Get(id ident.ExGuid) (element.DataElement, error) {
	if id.IsNull() {
		return element.DataElement{}, storage.ErrInvalidID
	}
	b, err := os.ReadFile(s.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return element.DataElement{}, storage.ErrNotFound
		}
		return element.DataElement{}, err
	}
	e, err := codec.DecodeElement(b)
	if err != nil {
		return element.DataElement{}, err
	}
	if e.ID != id {
		return element.DataElement{}, storage.ErrIDMismatch
	}
	return e, nil
}

func (s *Store) Has(id ident.ExGuid) bool {
	if id.IsNull() {
		return false
	}
	_, err := os.Stat(s.pathFor(id))
	return err == nil
}

func (s *Store) pathFor(id ident.ExGuid) string {
	g := id.ID.String()
	return filepath.Join(s.root, g[:2], fmt.Sprintf("%s.%d", g, id.Serial))
}
