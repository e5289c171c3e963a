package resolver

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"xdao.co/revstore/compliance"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
	"xdao.co/revstore/validate"
)

// Options controls resolution.
//
// Options{} resolves the main cell of a file-content package in Permissive mode.
type Options struct {
	// ExpectedSchema is the schema the storage manifest must declare.
	// The nil GUID means ident.FileContentSchema.
	ExpectedSchema ident.Guid
	Mode           compliance.ComplianceMode
	// Cell selects the cell Content materializes. Null means ident.MainCell.
	Cell   ident.CellId
	Logger hclog.Logger
}

func (o Options) withDefaults() Options {
	if o.ExpectedSchema == ident.NilGuid {
		o.ExpectedSchema = ident.FileContentSchema
	}
	if o.Cell.IsNull() {
		o.Cell = ident.MainCell
	}
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}
	return o
}

func enforceStrict(pkg *element.Package, storageIndexID ident.ExGuid) error {
	if orphans := validate.Orphans(pkg, storageIndexID); len(orphans) > 0 {
		return element.NewError(element.MalformedOrWrongSchema, orphans[0],
			fmt.Sprintf("strict mode: %d unreachable elements", len(orphans)))
	}
	return nil
}
