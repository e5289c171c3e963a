// Package chunk converts raw bytes to and from a node-object tree, and maps
// tree nodes onto object group objects.
//
// Boundary policy is pluggable through Chunker. FixedSize is the default.
package chunk

import (
	"encoding/binary"
	"fmt"

	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
)

// DefaultSize is the FixedSize leaf size used when none is configured.
const DefaultSize = 256 << 10

// NodeKind distinguishes leaves (byte ranges) from intermediate nodes.
type NodeKind uint8

const (
	Leaf         NodeKind = 0
	Intermediate NodeKind = 1
)

// Node is a node of the content tree.
type Node struct {
	ID       ident.ExGuid
	Kind     NodeKind
	Data     []byte
	Children []*Node
}

// Size returns the number of content bytes under n.
func (n *Node) Size() uint64 {
	if n == nil {
		return 0
	}
	if n.Kind == Leaf {
		return uint64(len(n.Data))
	}
	var total uint64
	for _, c := range n.Children {
		total += c.Size()
	}
	return total
}

// Chunker builds a content tree from bytes. Every node gets a fresh id from m.
type Chunker interface {
	Chunk(data []byte, m *ident.Minter) *Node
}

// Func adapts a function to Chunker.
type Func func(data []byte, m *ident.Minter) *Node

func (f Func) Chunk(data []byte, m *ident.Minter) *Node { return f(data, m) }

// FixedSize splits content into leaves of at most Size bytes under a single
// intermediate root. Empty content yields a root with no leaves.
type FixedSize struct {
	Size int
}

func (c FixedSize) Chunk(data []byte, m *ident.Minter) *Node {
	size := c.Size
	if size <= 0 {
		size = DefaultSize
	}
	root := &Node{ID: m.ExGuid(), Kind: Intermediate}
	for off := 0; off < len(data); off += size {
		end := off + size
		if end > len(data) {
			end = len(data)
		}
		root.Children = append(root.Children, &Node{
			ID:   m.ExGuid(),
			Kind: Leaf,
			Data: append([]byte(nil), data[off:end]...),
		})
	}
	return root
}

// Join concatenates the leaves of the tree in order.
func Join(root *Node) []byte {
	out := make([]byte, 0, root.Size())
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Kind == Leaf {
			out = append(out, n.Data...)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

// Object data layout: one tag byte, then either the leaf bytes or the
// uvarint content size of an intermediate node.

// Objects flattens the tree into objects in pre-order.
func Objects(root *Node) []element.Object {
	var out []element.Object
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, encodeNode(n))
		for _, c := range n.Children {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

func encodeNode(n *Node) element.Object {
	if n.Kind == Leaf {
		data := make([]byte, 0, len(n.Data)+1)
		data = append(data, byte(Leaf))
		data = append(data, n.Data...)
		return element.Object{ID: n.ID, Data: data}
	}
	data := binary.AppendUvarint([]byte{byte(Intermediate)}, n.Size())
	refs := make([]ident.ExGuid, 0, len(n.Children))
	for _, c := range n.Children {
		refs = append(refs, c.ID)
	}
	return element.Object{ID: n.ID, Data: data, References: refs}
}

// Source resolves objects and out-of-line blobs during tree reconstruction.
type Source interface {
	Object(id ident.ExGuid) (element.Object, bool)
	Blob(id ident.ExGuid) ([]byte, bool)
}

// Tree rebuilds the content tree rooted at rootID.
//
// Missing objects or blobs are IncompleteSnapshot errors. Cycles, unknown
// tags and size mismatches are MalformedOrWrongSchema errors.
func Tree(src Source, rootID ident.ExGuid) (*Node, error) {
	onPath := make(map[ident.ExGuid]bool)
	var build func(id ident.ExGuid) (*Node, error)
	build = func(id ident.ExGuid) (*Node, error) {
		if onPath[id] {
			return nil, element.NewError(element.MalformedOrWrongSchema, id, "node tree contains a cycle")
		}
		obj, ok := src.Object(id)
		if !ok {
			return nil, element.NewError(element.IncompleteSnapshot, id, "node object missing")
		}
		if len(obj.Data) == 0 {
			return nil, element.NewError(element.MalformedOrWrongSchema, id, "node object has no tag")
		}
		switch NodeKind(obj.Data[0]) {
		case Leaf:
			if len(obj.References) != 0 {
				return nil, element.NewError(element.MalformedOrWrongSchema, id, "leaf node has references")
			}
			data := obj.Data[1:]
			if !obj.Blob.IsNull() {
				b, ok := src.Blob(obj.Blob)
				if !ok {
					return nil, element.NewError(element.IncompleteSnapshot, obj.Blob, "object data blob missing")
				}
				data = b
			}
			return &Node{ID: id, Kind: Leaf, Data: data}, nil
		case Intermediate:
			size, n := binary.Uvarint(obj.Data[1:])
			if n <= 0 {
				return nil, element.NewError(element.MalformedOrWrongSchema, id, "bad intermediate node size")
			}
			onPath[id] = true
			node := &Node{ID: id, Kind: Intermediate}
			for _, ref := range obj.References {
				child, err := build(ref)
				if err != nil {
					return nil, err
				}
				node.Children = append(node.Children, child)
			}
			delete(onPath, id)
			if got := node.Size(); got != size {
				return nil, element.NewError(element.MalformedOrWrongSchema, id,
					fmt.Sprintf("intermediate node declares %d bytes, children hold %d", size, got))
			}
			return node, nil
		default:
			return nil, element.NewError(element.MalformedOrWrongSchema, id,
				fmt.Sprintf("unknown node tag %#x", obj.Data[0]))
		}
	}
	return build(rootID)
}
