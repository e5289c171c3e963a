package model

type ComplianceMode string

const (
	CompliancePermissive ComplianceMode = "permissive"
	ComplianceStrict     ComplianceMode = "strict"
)

// InspectRequest asks for a report on an encoded package.
//
// JSON note: Package is encoded as base64.
type InspectRequest struct {
	Package      []byte         `json:"package"`
	StorageIndex string         `json:"storageIndex"`
	Compliance   ComplianceMode `json:"compliance"`
}

type Missing struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Referrer string `json:"referrer,omitempty"`
}

type Revision struct {
	Revision         string `json:"revision"`
	RevisionManifest string `json:"revisionManifest"`
	BaseRevision     string `json:"baseRevision,omitempty"`
}

type Cell struct {
	ID           string     `json:"id"`
	Role         string     `json:"role"`
	CellManifest string     `json:"cellManifest"`
	ObjectGroups []string   `json:"objectGroups"`
	History      []Revision `json:"history"`
}

type Editor struct {
	CacheID             string            `json:"cacheID"`
	FriendlyName        string            `json:"friendlyName"`
	LoginName           string            `json:"loginName"`
	SIPAddress          string            `json:"sipAddress,omitempty"`
	EmailAddress        string            `json:"emailAddress,omitempty"`
	HasEditorPermission bool              `json:"hasEditorPermission"`
	Timeout             int64             `json:"timeout"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// Inspection is a read-only report on a package.
//
// Incompleteness is reported, not returned as an error: Complete is false and
// Missing lists the absent elements. Cells is empty when the manifest chain
// does not resolve.
type Inspection struct {
	StorageIndex   string         `json:"storageIndex"`
	Schema         string         `json:"schema,omitempty"`
	ExpectedSchema bool           `json:"expectedSchema"`
	Complete       bool           `json:"complete"`
	Elements       map[string]int `json:"elements"`
	Cells          []Cell         `json:"cells"`
	Missing        []Missing      `json:"missing"`
	Orphans        []string       `json:"orphans"`
	Editors        []Editor       `json:"editors,omitempty"`
}
