package document

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed scene.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func sceneSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// CorruptSceneError reports a stored scene record that cannot be rehydrated.
type CorruptSceneError struct {
	Reason string
	Err    error
}

func (e *CorruptSceneError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt scene: %s: %v", e.Reason, e.Err)
	}
	return "corrupt scene: " + e.Reason
}

func (e *CorruptSceneError) Unwrap() error { return e.Err }

// IsCorrupt reports whether err is, or wraps, a CorruptSceneError.
func IsCorrupt(err error) bool {
	var ce *CorruptSceneError
	return errors.As(err, &ce)
}

// Encode serialises a record. Missing containers are written as empty arrays
// so the output always passes Decode.
func Encode(rec *SceneRecord) ([]byte, error) {
	if rec == nil {
		return nil, errors.New("encode scene: nil record")
	}
	out := *rec
	if out.Version == 0 {
		out.Version = RecordVersion
	}
	if out.Staging == nil {
		out.Staging = []EntityRecord{}
	}
	if out.Workspace == nil {
		out.Workspace = []EntityRecord{}
	}
	if out.Transform == nil {
		t := IdentityTransform()
		out.Transform = &t
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return data, nil
}

// Decode parses and structurally validates a stored record. Any failure is
// returned as a *CorruptSceneError.
func Decode(data []byte) (*SceneRecord, error) {
	if !json.Valid(data) {
		return nil, &CorruptSceneError{Reason: "not valid JSON"}
	}

	s, err := sceneSchema()
	if err != nil {
		return nil, fmt.Errorf("load scene schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &CorruptSceneError{Reason: "schema validation", Err: err}
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, &CorruptSceneError{Reason: strings.Join(msgs, "; ")}
	}

	var rec SceneRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &CorruptSceneError{Reason: "decode", Err: err}
	}
	if err := checkIDs(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// checkIDs rejects records in which two entities share an id.
func checkIDs(rec *SceneRecord) error {
	seen := make(map[string]struct{}, len(rec.Staging)+len(rec.Workspace))
	for _, list := range [][]EntityRecord{rec.Staging, rec.Workspace} {
		for _, e := range list {
			if e.ID == "" {
				continue
			}
			if _, dup := seen[e.ID]; dup {
				return &CorruptSceneError{Reason: fmt.Sprintf("duplicate entity id %q", e.ID)}
			}
			seen[e.ID] = struct{}{}
		}
	}
	return nil
}
