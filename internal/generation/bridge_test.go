package generation

import (
	"strings"
	"testing"

	"gourho/internal/metadata"
)

func renderBridge(t *testing.T, tree []metadata.Decl) string {
	t.Helper()
	pass := NewBridgePass("Urho3D/Urho3DAll.h", DefaultTypeMapper{})
	if err := metadata.Walk(tree, pass); err != nil {
		t.Fatalf("bridge pass failed: %v", err)
	}
	return pass.String()
}

func TestBridgeShapeScenario(t *testing.T) {
	output := renderBridge(t, shapeTree())

	assertContains(t, output, "#include <Urho3D/Urho3DAll.h>", "native header include")
	assertContains(t, output, "extern \"C\"", "C linkage block")

	// Destructor thunk for every class.
	assertContains(t, output, "void Urho3D__Shape_destructor(Urho3D::Shape* instance)", "destructor thunk")
	assertContains(t, output, "delete instance;", "destructor body")

	// Field accessors with textual marshaling.
	assertContains(t, output, "const char* get_Urho3D__Shape__Name(Urho3D::Shape* cls)", "getter thunk")
	assertContains(t, output, "return cls->Name.CString();", "textual getter body")
	assertContains(t, output, "void set_Urho3D__Shape__Name(Urho3D::Shape* cls, const char* value)", "setter thunk")

	// Constructor thunk returning a fresh native instance.
	assertContains(t, output, "Urho3D::Shape* Urho3D__Shape__Shape(Urho3D::Context* context)", "constructor thunk")
	assertContains(t, output, "return new Urho3D::Shape(context);", "constructor body")

	// Method thunk and virtual dispatch storage.
	assertContains(t, output, "float Urho3D__Shape__Area(Urho3D::Shape* instance)", "method thunk")
	assertContains(t, output, "return instance->Area();", "method body")
	assertContains(t, output, "static set_Shape_fnArea_callbackType set_Shape_fnArea_callback = nullptr;", "callback storage")
	assertContains(t, output, "void set_Shape_fnArea(Urho3D::Shape* instance, set_Shape_fnArea_callbackType callback)", "callback setter")

	if !strings.HasSuffix(output, "}\n") {
		t.Fatal("The linkage block must be closed")
	}
}

func TestBridgeDeterministic(t *testing.T) {
	first := renderBridge(t, shapeTree())
	second := renderBridge(t, shapeTree())
	if first != second {
		t.Fatal("Bridge emission must be deterministic")
	}
}

func TestBridgeSkipsStaticFields(t *testing.T) {
	class := metadata.NewClass("Shape", "Urho3D::Shape")
	class.Add(metadata.NewField("Count", "Urho3D::Shape::Count", metadata.TypeDesc{Name: "int", IsBuiltIn: true}, true, ""))
	output := renderBridge(t, []metadata.Decl{class})

	if strings.Contains(output, "get_Urho3D__Shape__Count") {
		t.Fatal("Static fields are skipped with no emission")
	}
}
