package provider

import (
	"context"
	"testing"
)

type namedProvider string

func (p namedProvider) Name() string { return string(p) }
func (p namedProvider) Summarize(ctx context.Context, req Request) (string, error) {
	return string(p), nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(namedProvider("gemini"))
	r.Register(namedProvider("openrouter"))

	p, err := r.Get("")
	if err != nil || p.Name() != "gemini" {
		t.Errorf("default provider = %v, %v; want gemini", p, err)
	}

	if err := r.SetDefault("openrouter"); err != nil {
		t.Fatal(err)
	}
	if p, _ := r.Get(""); p.Name() != "openrouter" {
		t.Errorf("default provider = %s, want openrouter", p.Name())
	}

	if _, err := r.Get("claude"); err == nil {
		t.Error("Get of unknown provider should fail")
	}
	if err := r.SetDefault("claude"); err == nil {
		t.Error("SetDefault of unknown provider should fail")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "gemini" || names[1] != "openrouter" {
		t.Errorf("Names() = %v", names)
	}
}
