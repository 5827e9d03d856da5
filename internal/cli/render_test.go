package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/beamforge/pkg/survey"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "html", []string{"html"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces trimmed", "svg, json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid all", []string{"svg", "png", "pdf", "html", "dot", "json"}, false},
		{"invalid format", []string{"bmp"}, true},
		{"mixed valid invalid", []string{"svg", "bmp"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"from input", "", "examples/ring.toml", "ring"},
		{"from remote input", "", "https://example.com/lattices/ring.toml", "ring"},
		{"output with known ext", "out/cell.svg", "ring.toml", "out/cell"},
		{"output with unknown ext", "out/cell.bak", "ring.toml", "out/cell.bak"},
		{"bare output", "schematic", "ring.toml", "schematic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	tmp := t.TempDir()
	artifacts := map[string][]byte{
		"svg":  []byte("<svg/>"),
		"json": []byte("{}"),
	}

	t.Run("multipleFormats", func(t *testing.T) {
		opts := renderOpts{
			output:  filepath.Join(tmp, "cell"),
			formats: []string{"svg", "json"},
		}
		paths, err := writeArtifacts(artifacts, "cell.toml", opts)
		if err != nil {
			t.Fatalf("writeArtifacts: %v", err)
		}
		want := []string{filepath.Join(tmp, "cell.svg"), filepath.Join(tmp, "cell.json")}
		for i, p := range want {
			if paths[i] != p {
				t.Errorf("paths[%d] = %q, want %q", i, paths[i], p)
			}
			data, err := os.ReadFile(p)
			if err != nil {
				t.Fatalf("reading %s: %v", p, err)
			}
			format := opts.formats[i]
			if !bytes.Equal(data, artifacts[format]) {
				t.Errorf("%s content = %q, want %q", p, data, artifacts[format])
			}
		}
	})

	t.Run("singleExplicitOutput", func(t *testing.T) {
		out := filepath.Join(tmp, "explicit.svg")
		opts := renderOpts{output: out, formats: []string{"svg"}}
		paths, err := writeArtifacts(artifacts, "cell.toml", opts)
		if err != nil {
			t.Fatalf("writeArtifacts: %v", err)
		}
		if len(paths) != 1 || paths[0] != out {
			t.Fatalf("paths = %v, want [%s]", paths, out)
		}
		if _, err := os.Stat(out); err != nil {
			t.Errorf("explicit output not written: %v", err)
		}
	})
}

func TestRunRender(t *testing.T) {
	tmp := t.TempDir()
	manifestPath := filepath.Join(tmp, "cell.toml")
	if err := os.WriteFile(manifestPath, []byte(cellManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	opts := renderOpts{
		output:  filepath.Join(tmp, "cell"),
		formats: []string{"svg", "json"},
		noCache: true,
	}
	if err := c.runRender(context.Background(), manifestPath, opts); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	svg, err := os.ReadFile(filepath.Join(tmp, "cell.svg"))
	if err != nil {
		t.Fatalf("reading svg: %v", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(svg), []byte("<svg")) {
		t.Errorf("svg artifact should start with <svg, got %.40q", svg)
	}

	raw, err := os.ReadFile(filepath.Join(tmp, "cell.json"))
	if err != nil {
		t.Fatalf("reading json: %v", err)
	}
	var doc survey.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decoding survey json: %v", err)
	}
	if doc.Name != "cell" {
		t.Errorf("doc.Name = %q, want %q", doc.Name, "cell")
	}
	if len(doc.Rows) != 4 {
		t.Errorf("len(doc.Rows) = %d, want 4", len(doc.Rows))
	}
}
