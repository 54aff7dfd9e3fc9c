package generation

import (
	"testing"

	"gourho/internal/metadata"
)

func TestDefaultMapperBasicTypes(t *testing.T) {
	mapper := DefaultTypeMapper{}

	cases := map[string]string{
		"float":  "float32",
		"double": "float64",
		"int":    "int32",
		"bool":   "bool",
		"void":   "",
		"uint32": "uint32",
	}
	for native, expected := range cases {
		desc := metadata.TypeDesc{Name: native, IsBuiltIn: true}
		got, err := mapper.ReturnRepresentation(desc, false)
		if err != nil {
			t.Fatalf("ReturnRepresentation(%q) failed: %v", native, err)
		}
		if got != expected {
			t.Fatalf("ReturnRepresentation(%q): expected %q, got %q", native, expected, got)
		}
	}
}

func TestDefaultMapperTextualTypes(t *testing.T) {
	mapper := DefaultTypeMapper{}
	desc := metadata.TypeDesc{Name: "Urho3D::String"}

	repr, err := mapper.ParamRepresentation(desc)
	if err != nil {
		t.Fatalf("ParamRepresentation failed: %v", err)
	}
	if repr != "string" {
		t.Fatalf("Expected textual representation 'string', got %q", repr)
	}
	if mapper.DirectiveFor(desc) != Textual {
		t.Fatal("Native strings must marshal textually")
	}
}

func TestDefaultMapperClassTypesBecomeHandles(t *testing.T) {
	mapper := DefaultTypeMapper{}

	pointer := metadata.TypeDesc{Name: "Urho3D::Context", IsPointer: true}
	repr, err := mapper.ParamRepresentation(pointer)
	if err != nil {
		t.Fatalf("ParamRepresentation failed: %v", err)
	}
	if repr != "uintptr" {
		t.Fatalf("Class pointers cross as handles, got %q", repr)
	}
	if mapper.DirectiveFor(pointer) != ByReference {
		t.Fatal("Class pointers marshal by reference")
	}

	value := metadata.TypeDesc{Name: "Urho3D::Color"}
	repr, err = mapper.ParamRepresentation(value)
	if err != nil {
		t.Fatalf("ParamRepresentation failed: %v", err)
	}
	if repr != "uintptr" {
		t.Fatalf("Class values cross as handles, got %q", repr)
	}
}

func TestDefaultMapperRejectsUnknownBasicTypes(t *testing.T) {
	mapper := DefaultTypeMapper{}
	_, err := mapper.ParamRepresentation(metadata.TypeDesc{Name: "int128", IsBuiltIn: true})
	if err == nil {
		t.Fatal("Expected an error for an unrepresentable basic type")
	}
}
