package main

import "testing"

func TestSampleProviders(t *testing.T) {
	seen := map[string]bool{}
	for _, in := range sampleProviders() {
		if in.Name == "" || in.Specialty == "" || in.Location == "" {
			t.Errorf("sample provider %+v is missing a required field", in)
		}
		if in.Price <= 0 {
			t.Errorf("sample provider %q has non-positive price %d", in.Name, in.Price)
		}
		if seen[in.Name] {
			t.Errorf("duplicate sample provider %q", in.Name)
		}
		seen[in.Name] = true
	}
}

func TestCommands(t *testing.T) {
	for _, cmd := range []interface{ Name() string }{serveCmd(), migrateCmd(), seedCmd()} {
		if cmd.Name() == "" {
			t.Error("command must have a name")
		}
	}
}
