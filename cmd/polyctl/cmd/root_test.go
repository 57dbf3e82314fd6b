package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/polystage/polystage/internal/document"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func storeFlags(t *testing.T) []string {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	return []string{"--driver", "sqlite", "--sqlite-path", filepath.Join(t.TempDir(), "scene.db"), "--key", "test-scene"}
}

func TestSeedShowExportReset(t *testing.T) {
	flags := storeFlags(t)

	out, err := run(t, append([]string{"seed", "--seed", "7", "--place", "2"}, flags...)...)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "2 placed") {
		t.Fatalf("seed output = %q", out)
	}

	out, err = run(t, append([]string{"show", "--json"}, flags...)...)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	rec, err := document.Decode([]byte(out))
	if err != nil {
		t.Fatalf("decode shown record: %v", err)
	}
	if len(rec.Workspace) != 2 {
		t.Fatalf("workspace = %d, want 2", len(rec.Workspace))
	}
	if p := rec.Workspace[1].Position; p == nil || p.X != 1.5*document.BoxSize || p.Y != 0 {
		t.Fatalf("second position = %+v", p)
	}

	png := filepath.Join(t.TempDir(), "out.png")
	if _, err := run(t, append([]string{"export", "--out", png, "--width", "64", "--height", "48"}, flags...)...); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(png)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("export did not write a PNG")
	}

	if _, err := run(t, append([]string{"reset"}, flags...)...); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := run(t, append([]string{"show"}, flags...)...); err == nil {
		t.Fatalf("show after reset succeeded")
	}
}

func TestShowSummary(t *testing.T) {
	flags := storeFlags(t)
	if _, err := run(t, append([]string{"seed", "--place", "1"}, flags...)...); err != nil {
		t.Fatalf("seed: %v", err)
	}
	out, err := run(t, append([]string{"show"}, flags...)...)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, `Scene "test-scene"`) || !strings.Contains(out, "Workspace: 1 shape(s)") {
		t.Fatalf("summary = %q", out)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(good, []byte(`{"staging":[],"workspace":[],"transform":{"scale":1,"offset":{"x":0,"y":0}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`{"staging":[],"workspace":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", "")

	out, err := run(t, "validate", "--driver", "memory", good)
	if err != nil {
		t.Fatalf("validate good: %v", err)
	}
	if !strings.Contains(out, "ok (0 staged, 0 placed)") {
		t.Fatalf("validate output = %q", out)
	}
	if _, err := run(t, "validate", "--driver", "memory", bad); err == nil {
		t.Fatalf("record without transform validated")
	}
	if _, err := run(t, "validate", "--driver", "memory"); err == nil {
		t.Fatalf("validate without a file succeeded")
	}
}
