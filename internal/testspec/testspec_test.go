package testspec

import "testing"

type stubGenerator struct{ ran bool }

func (s *stubGenerator) Run(spec *TestSpec) error { s.ran = true; return nil }
func (s *stubGenerator) Stop()                    {}
func (s *stubGenerator) Running() bool             { return s.ran }

func TestCatalogResolveKnownGenerator(t *testing.T) {
	cat := NewCatalog()
	cat.Register("stub", func() Generator { return &stubGenerator{} })

	gen, err := cat.Resolve(&TestSpec{Generator: "stub"})
	if err != nil {
		t.Fatal(err)
	}
	if err := gen.Run(&TestSpec{}); err != nil {
		t.Fatal(err)
	}
	if !gen.Running() {
		t.Fatal("expected stub generator to report running after Run")
	}
}

func TestCatalogResolveUnknownGenerator(t *testing.T) {
	cat := NewCatalog()
	_, err := cat.Resolve(&TestSpec{Generator: "nope"})
	if err == nil {
		t.Fatal("expected ErrUnknownGenerator")
	}
	if _, ok := err.(*ErrUnknownGenerator); !ok {
		t.Fatalf("expected *ErrUnknownGenerator, got %T", err)
	}
}
