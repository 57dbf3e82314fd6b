package document

import (
	"errors"
	"strings"
	"testing"
)

const validRecord = `{
	"version": 1,
	"staging": [
		{"id": "a", "geometry": [[90,50],[30,84.6],[30,15.4]], "fillColor": "#ff0000"}
	],
	"workspace": [
		{"id": "b", "geometry": [[0,0],[100,0],[100,100],[0,100]], "fillColor": "#00Ff00", "position": {"x": 12.5, "y": -4}}
	],
	"transform": {"scale": 1.5, "offset": {"x": 10, "y": 20}}
}`

func TestDecodeValidRecord(t *testing.T) {
	rec, err := Decode([]byte(validRecord))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rec.Staging) != 1 || len(rec.Workspace) != 1 {
		t.Fatalf("expected 1 staged and 1 placed entity, got %d/%d", len(rec.Staging), len(rec.Workspace))
	}
	if rec.Transform == nil || rec.Transform.Scale != 1.5 || rec.Transform.Offset != (Point{X: 10, Y: 20}) {
		t.Fatalf("unexpected transform: %+v", rec.Transform)
	}
	if p := rec.Workspace[0].Position; p == nil || *p != (Point{X: 12.5, Y: -4}) {
		t.Fatalf("unexpected position: %+v", p)
	}
}

func TestDecodeRejectsCorruptRecords(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"staging": [`},
		{"missing transform", `{"staging": [], "workspace": []}`},
		{"missing workspace", `{"staging": [], "transform": {"scale": 1, "offset": {"x": 0, "y": 0}}}`},
		{"zero scale", `{"staging": [], "workspace": [], "transform": {"scale": 0, "offset": {"x": 0, "y": 0}}}`},
		{"negative scale", `{"staging": [], "workspace": [], "transform": {"scale": -2, "offset": {"x": 0, "y": 0}}}`},
		{"missing offset", `{"staging": [], "workspace": [], "transform": {"scale": 1}}`},
		{"two point geometry", `{"staging": [{"geometry": [[0,0],[1,1]], "fillColor": "#000000"}], "workspace": [], "transform": {"scale": 1, "offset": {"x": 0, "y": 0}}}`},
		{"three coordinate point", `{"staging": [{"geometry": [[0,0,0],[1,1],[2,2]], "fillColor": "#000000"}], "workspace": [], "transform": {"scale": 1, "offset": {"x": 0, "y": 0}}}`},
		{"bad colour", `{"staging": [{"geometry": [[0,0],[1,1],[2,0]], "fillColor": "red"}], "workspace": [], "transform": {"scale": 1, "offset": {"x": 0, "y": 0}}}`},
		{"placed without position", `{"staging": [], "workspace": [{"geometry": [[0,0],[1,1],[2,0]], "fillColor": "#000000"}], "transform": {"scale": 1, "offset": {"x": 0, "y": 0}}}`},
		{"duplicate ids", `{"staging": [{"id": "x", "geometry": [[0,0],[1,1],[2,0]], "fillColor": "#000000"}], "workspace": [{"id": "x", "geometry": [[0,0],[1,1],[2,0]], "fillColor": "#000000", "position": {"x": 0, "y": 0}}], "transform": {"scale": 1, "offset": {"x": 0, "y": 0}}}`},
		{"markup snapshot", `{"buffer": "<div class=\"polygon-wrapper\"></div>", "workspace": "", "transform": {"scale": 1, "offset": {"x": 0, "y": 0}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if err == nil {
				t.Fatalf("expected error")
			}
			var ce *CorruptSceneError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *CorruptSceneError, got %T: %v", err, err)
			}
			if !IsCorrupt(err) {
				t.Fatalf("IsCorrupt = false for %v", err)
			}
		})
	}
}

func TestEncodeFillsDefaults(t *testing.T) {
	data, err := Encode(&SceneRecord{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"staging":[]`, `"workspace":[]`, `"scale":1`, `"version":1`} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded record %s missing %s", s, want)
		}
	}
	if _, err := Decode(data); err != nil {
		t.Fatalf("Decode of encoded empty record: %v", err)
	}
}

func TestEncodeDecodeKeepsStagedEntitiesUnpositioned(t *testing.T) {
	rec := NewEmptyRecord()
	rec.Staging = append(rec.Staging, EntityRecord{
		ID:        "s1",
		Geometry:  RegularPolygon(5, 50, 50, 40),
		FillColor: "#123456",
	})
	data, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(data), "position") {
		t.Fatalf("staged entity serialised with a position: %s", data)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Staging[0].Geometry) != 5 {
		t.Fatalf("geometry length = %d, want 5", len(got.Staging[0].Geometry))
	}
}
