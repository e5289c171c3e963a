package model

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestSnapshot_InspectRequest_JSONShape(t *testing.T) {
	req := InspectRequest{
		Package:      []byte("pkg-bytes"),
		StorageIndex: "{00000000-0000-0000-0000-000000000001},7",
		Compliance:   ComplianceStrict,
	}

	b, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	const want = "{\n" +
		"  \"package\": \"cGtnLWJ5dGVz\",\n" +
		"  \"storageIndex\": \"{00000000-0000-0000-0000-000000000001},7\",\n" +
		"  \"compliance\": \"strict\"\n" +
		"}"

	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}

func TestSnapshot_Inspection_JSONShape(t *testing.T) {
	in := Inspection{
		StorageIndex:   "{si},9",
		Schema:         "0eb93394-571d-41e9-aad3-880d92d31955",
		ExpectedSchema: true,
		Complete:       false,
		Elements:       map[string]int{"StorageManifest": 1, "StorageIndex": 1},
		Cells: []Cell{{
			ID:           "{a},1;{b},1",
			Role:         "{r},2",
			CellManifest: "{cm},3",
			ObjectGroups: []string{"{og},4"},
			History:      []Revision{{Revision: "{rev},5", RevisionManifest: "{rm},6"}},
		}},
		Missing: []Missing{{ID: "{og},4", Kind: "ObjectGroup", Referrer: "{rm},6"}},
		Orphans: []string{},
	}

	b, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	const want = "{\n" +
		"  \"storageIndex\": \"{si},9\",\n" +
		"  \"schema\": \"0eb93394-571d-41e9-aad3-880d92d31955\",\n" +
		"  \"expectedSchema\": true,\n" +
		"  \"complete\": false,\n" +
		"  \"elements\": {\n" +
		"    \"StorageIndex\": 1,\n" +
		"    \"StorageManifest\": 1\n" +
		"  },\n" +
		"  \"cells\": [\n" +
		"    {\n" +
		"      \"id\": \"{a},1;{b},1\",\n" +
		"      \"role\": \"{r},2\",\n" +
		"      \"cellManifest\": \"{cm},3\",\n" +
		"      \"objectGroups\": [\n" +
		"        \"{og},4\"\n" +
		"      ],\n" +
		"      \"history\": [\n" +
		"        {\n" +
		"          \"revision\": \"{rev},5\",\n" +
		"          \"revisionManifest\": \"{rm},6\"\n" +
		"        }\n" +
		"      ]\n" +
		"    }\n" +
		"  ],\n" +
		"  \"missing\": [\n" +
		"    {\n" +
		"      \"id\": \"{og},4\",\n" +
		"      \"kind\": \"ObjectGroup\",\n" +
		"      \"referrer\": \"{rm},6\"\n" +
		"    }\n" +
		"  ],\n" +
		"  \"orphans\": []\n" +
		"}"

	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}
