package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Builtin(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 8 {
		t.Fatalf("expected 8 records, got %d", c.Len())
	}

	r, ok := c.Get("5")
	if !ok {
		t.Fatal("expected record 5")
	}
	if r.Title != "Beca PROBEM Guerrero" {
		t.Errorf("unexpected title %q", r.Title)
	}
	if r.MinAverage == nil || *r.MinAverage != 7.0 {
		t.Errorf("expected academic requirement 7.0, got %v", r.MinAverage)
	}
	if len(r.GeographicPriority) != 2 || r.GeographicPriority[0] != "Guerrero" {
		t.Errorf("unexpected geographic priority %v", r.GeographicPriority)
	}

	// без требования к среднему баллу
	r, _ = c.Get("6")
	if r.MinAverage != nil {
		t.Errorf("record 6 should have no academic requirement, got %v", *r.MinAverage)
	}
}

func TestGet_Unknown(t *testing.T) {
	c, _ := Load("")
	if _, ok := c.Get("99"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	c, _ := Load("")
	all := c.All()
	all[0].Title = "mutated"

	r, _ := c.Get("1")
	if r.Title == "mutated" {
		t.Error("All must not expose internal storage")
	}
}

func TestParse_DuplicateID(t *testing.T) {
	_, err := Parse([]byte("- id: \"1\"\n  title: a\n- id: \"1\"\n  title: b\n"))
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestParse_MissingID(t *testing.T) {
	if _, err := Parse([]byte("- title: a\n")); err == nil {
		t.Fatal("expected missing id error")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("- id: x\n  title: Custom\n  level: [universidad]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r, ok := c.Get("x")
	if !ok || r.Title != "Custom" || len(r.Levels) != 1 {
		t.Errorf("unexpected record %+v", r)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
