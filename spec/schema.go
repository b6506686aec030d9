package spec

import (
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

// SerializeSchema reflects the JSON schema of a spec document type. Schemas
// are persisted alongside a world save so a later engine version can detect
// that its spec struct layout drifted from the data on disk.
func SerializeSchema(doc any) ([]byte, error) {
	schema, err := jsonschema.Reflect(doc).MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "spec document must be json serializable")
	}
	return schema, nil
}

// IsSchemaValid reports whether two serialized schemas describe the same
// document layout.
func IsSchemaValid(schema1 []byte, schema2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(schema1, schema2)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}

// MatchesSchema reports whether doc's current layout still matches a stored
// schema.
func MatchesSchema(doc any, storedSchema []byte) (bool, error) {
	current, err := SerializeSchema(doc)
	if err != nil {
		return false, err
	}
	return IsSchemaValid(current, storedSchema)
}
