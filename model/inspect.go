package model

import (
	"xdao.co/revstore/codec"
	"xdao.co/revstore/compliance"
	"xdao.co/revstore/editors"
	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
	"xdao.co/revstore/resolver"
	"xdao.co/revstore/validate"
)

// InspectBytes decodes req.Package and inspects it.
func InspectBytes(req InspectRequest) (*Inspection, error) {
	mode, err := toCompliance(req.Compliance)
	if err != nil {
		return nil, err
	}
	id, err := ident.ParseExGuid(req.StorageIndex)
	if err != nil {
		return nil, NewError(ErrInvalidID, "invalid storage index id")
	}
	pkg, err := codec.DecodePackage(req.Package, mode)
	if err != nil {
		return nil, MapError(err)
	}
	return Inspect(pkg, id, mode)
}

// Inspect reports counts, completeness, schema, cells, and the editors
// table of pkg rooted at storageIndexID.
//
// Only structural corruption is an error.
func Inspect(pkg *element.Package, storageIndexID ident.ExGuid, mode compliance.ComplianceMode) (*Inspection, error) {
	rep, err := validate.Completeness(pkg, storageIndexID)
	if err != nil {
		return nil, MapError(err)
	}

	out := &Inspection{
		StorageIndex:   storageIndexID.String(),
		ExpectedSchema: validate.HasExpectedSchema(pkg, storageIndexID, ident.FileContentSchema),
		Complete:       rep.Complete(),
		Elements:       map[string]int{},
		Cells:          []Cell{},
		Missing:        []Missing{},
		Orphans:        []string{},
	}
	if schema, ok := validate.Schema(pkg, storageIndexID); ok {
		out.Schema = schema.String()
	}
	for kind, n := range pkg.Count() {
		out.Elements[kind.String()] = n
	}
	for _, m := range rep.Missing {
		v := Missing{ID: m.ID.String(), Kind: m.Kind.String()}
		if !m.Referrer.IsNull() {
			v.Referrer = m.Referrer.String()
		}
		out.Missing = append(out.Missing, v)
	}
	for _, id := range validate.Orphans(pkg, storageIndexID) {
		out.Orphans = append(out.Orphans, id.String())
	}

	// The schema gate is reported above; resolve under whichever schema is declared.
	opts := resolver.Options{Mode: mode}
	if schema, ok := validate.Schema(pkg, storageIndexID); ok {
		opts.ExpectedSchema = schema
	}
	snap, err := resolver.Resolve(pkg, storageIndexID, opts)
	switch {
	case err == nil:
		for _, c := range snap.Cells {
			cell, err := fromCell(pkg, storageIndexID, c)
			if err != nil {
				return nil, err
			}
			out.Cells = append(out.Cells, cell)
		}
	case element.IsKind(err, element.IncompleteSnapshot):
	default:
		return nil, MapError(err)
	}

	eds, err := editors.Extract(pkg)
	switch {
	case err == nil:
		out.Editors = FromEditors(eds)
	case editors.IsNotFound(err), element.IsKind(err, element.IncompleteSnapshot):
	default:
		return nil, MapError(err)
	}
	return out, nil
}

func fromCell(pkg *element.Package, storageIndexID ident.ExGuid, c resolver.Cell) (Cell, error) {
	out := Cell{
		ID:           c.ID.String(),
		Role:         c.Role.String(),
		CellManifest: c.CellManifestID.String(),
		ObjectGroups: make([]string, 0, len(c.ObjectGroups)),
		History:      []Revision{},
	}
	for _, g := range c.ObjectGroups {
		out.ObjectGroups = append(out.ObjectGroups, g.String())
	}
	hist, err := resolver.History(pkg, storageIndexID, c.ID)
	if err != nil {
		return Cell{}, MapError(err)
	}
	for _, r := range hist {
		v := Revision{Revision: r.RevisionID.String(), RevisionManifest: r.RevisionManifestID.String()}
		if !r.BaseRevisionID.IsNull() {
			v.BaseRevision = r.BaseRevisionID.String()
		}
		out.History = append(out.History, v)
	}
	return out, nil
}

// FromEditors projects editors table records onto the boundary type.
func FromEditors(in []editors.Editor) []Editor {
	out := make([]Editor, 0, len(in))
	for _, e := range in {
		out = append(out, Editor{
			CacheID:             e.CacheID,
			FriendlyName:        e.FriendlyName,
			LoginName:           e.LoginName,
			SIPAddress:          e.SIPAddress,
			EmailAddress:        e.EmailAddress,
			HasEditorPermission: e.HasEditorPermission,
			Timeout:             e.Timeout,
			Metadata:            e.Metadata,
		})
	}
	return out
}

func toCompliance(m ComplianceMode) (compliance.ComplianceMode, error) {
	switch m {
	case CompliancePermissive:
		return compliance.Permissive, nil
	case ComplianceStrict:
		return compliance.Strict, nil
	case "":
		return 0, NewError(ErrInvalidRequest, "missing compliance mode")
	default:
		return 0, NewError(ErrInvalidRequest, "invalid compliance mode")
	}
}
