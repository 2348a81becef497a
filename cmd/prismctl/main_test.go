package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const overlappingBoard = `
prismions:
  - id: a
    x: 0
    y: 0
  - id: b
    x: 0
    y: 0
connections:
  - from: a
    to: b
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte(overlappingBoard), 0644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	out, err := run(t, "", "resolve", path, "--snap", "10")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	var s snapshot
	if err := yaml.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(s.Prismions) != 2 {
		t.Fatalf("Expected 2 prismions, got %d", len(s.Prismions))
	}
	a, b := s.Prismions[0], s.Prismions[1]
	if a.X != 0 || a.Y != 0 {
		t.Errorf("Expected first card to stay put, got (%v, %v)", a.X, a.Y)
	}
	// first clear spot on the spiral is straight down at 220
	if b.X != 0 || b.Y != 220 {
		t.Errorf("Expected second card at (0, 220), got (%v, %v)", b.X, b.Y)
	}
}

func TestResolveTargetOnly(t *testing.T) {
	out, err := run(t, overlappingBoard, "resolve", "-", "--target", "a", "--snap", "10", "-o", "json")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	var s snapshot
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if s.Prismions[1].X != 0 || s.Prismions[1].Y != 0 {
		t.Errorf("Expected non-target card to stay put, got (%v, %v)", s.Prismions[1].X, s.Prismions[1].Y)
	}
	if s.Prismions[0].Y != 220 {
		t.Errorf("Expected target card to move to y=220, got %v", s.Prismions[0].Y)
	}
}

func TestResolveRejectsNegativeOptions(t *testing.T) {
	if _, err := run(t, overlappingBoard, "resolve", "-", "--padding", "-1"); err == nil {
		t.Error("Expected an error for negative padding")
	}
}

func TestPortsCommand(t *testing.T) {
	board := `{"prismions":[{"id":"a","x":0,"y":0},{"id":"b","x":1000,"y":0}],"connections":[{"from":"a","to":"b"}]}`
	out, err := run(t, board, "ports", "-", "-o", "json")
	if err != nil {
		t.Fatalf("ports failed: %v", err)
	}
	var report []connectorReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(report) != 1 {
		t.Fatalf("Expected 1 connector, got %d", len(report))
	}
	r := report[0]
	if r.FromPort != "right" || r.ToPort != "left" {
		t.Errorf("Expected right->left, got %s->%s", r.FromPort, r.ToPort)
	}
	want := "M 320 100 C 370 100, 950 100, 1000 100"
	if r.Path != want {
		t.Errorf("Expected path %q, got %q", want, r.Path)
	}
}

func TestPortsUnknownPrismion(t *testing.T) {
	board := "prismions:\n  - id: a\nconnections:\n  - from: a\n    to: zzz\n"
	if _, err := run(t, board, "ports", "-"); err == nil {
		t.Error("Expected an error for a dangling connection")
	}
}

func TestDuplicateIDs(t *testing.T) {
	board := "prismions:\n  - id: a\n  - id: a\n"
	if _, err := run(t, board, "resolve", "-"); err == nil {
		t.Error("Expected an error for duplicate ids")
	}
}

func TestMapCommand(t *testing.T) {
	out, err := run(t, "", "map", "300", "200", "--pan-x", "100", "--pan-y", "50", "--zoom", "2", "-o", "json")
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}
	var p struct{ X, Y float64 }
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if p.X != 100 || p.Y != 75 {
		t.Errorf("Expected (100, 75), got (%v, %v)", p.X, p.Y)
	}

	out, err = run(t, "", "map", "100", "75", "--pan-x", "100", "--pan-y", "50", "--zoom", "2", "--to-client", "-o", "json")
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}
	_ = json.Unmarshal([]byte(out), &p)
	if p.X != 300 || p.Y != 200 {
		t.Errorf("Expected (300, 200), got (%v, %v)", p.X, p.Y)
	}
}
