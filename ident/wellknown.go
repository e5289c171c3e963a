package ident

// Wire constants shared by every encoder and decoder of the file-content
// format. These are literal values; never derive them.
var (
	// FileContentSchema is the storage manifest schema for file content.
	FileContentSchema = MustGuid("0EB93394-571D-41E9-AAD3-880D92D31955")

	// StorageRootRole is the role under which the storage manifest declares the main cell.
	StorageRootRole = ExGuid{Serial: 2, ID: MustGuid("84DEFAB9-AAA3-4A0D-A3A8-520C77AC7073")}

	// MainCell is the cell holding file content.
	MainCell = CellId{
		First:  ExGuid{Serial: 1, ID: MustGuid("84DEFAB9-AAA3-4A0D-A3A8-520C77AC7073")},
		Second: ExGuid{Serial: 1, ID: MustGuid("6F2A4665-42C8-46C7-BAB4-E28FDCE1E32B")},
	}

	// RevisionRootRole is the role under which a revision declares its root node object.
	RevisionRootRole = ExGuid{Serial: 1, ID: MustGuid("4A3717F8-1C14-49E7-9526-81D942DE1741")}
)
