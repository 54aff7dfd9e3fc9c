package metadata

import (
	"testing"
)

func TestClassHierarchyQueries(t *testing.T) {
	refCounted := NewClass("RefCounted", RefCountedSymbol)
	object := NewClass("Object", "Urho3D::Object", refCounted)
	node := NewClass("Node", "Urho3D::Node", object)

	if !node.IsSubclassOf(RefCountedSymbol) {
		t.Fatal("Node should be a transitive subclass of RefCounted")
	}
	if !node.IsRefCounted() {
		t.Fatal("Node should be reference counted")
	}
	if refCounted.IsSubclassOf(RefCountedSymbol) {
		t.Fatal("A class is not a subclass of itself")
	}
	if !refCounted.IsRefCounted() {
		t.Fatal("RefCounted itself should be reference counted")
	}

	if node.Root() != refCounted {
		t.Fatalf("Expected RefCounted as hierarchy root, got %s", node.Root().Name())
	}
	if refCounted.Root() != refCounted {
		t.Fatal("A class with no bases is its own root")
	}

	plain := NewClass("Color", "Urho3D::Color")
	if plain.IsRefCounted() {
		t.Fatal("Color should not be reference counted")
	}
}

func TestAddLinksOwner(t *testing.T) {
	class := NewClass("Shape", "Urho3D::Shape")
	field := NewField("Name", "Urho3D::Shape::Name", TypeDesc{Name: "Urho3D::String"}, false, "")
	method := NewMethod("Area", "Urho3D::Shape::Area", nil, TypeDesc{Name: "float", IsBuiltIn: true}, true)
	class.Add(field, method)

	if field.Owner() != class {
		t.Fatal("Field owner back-reference was not linked")
	}
	if method.Owner() != class {
		t.Fatal("Method owner back-reference was not linked")
	}
	if len(class.Members()) != 2 {
		t.Fatalf("Expected 2 members, got %d", len(class.Members()))
	}
}

func TestKinds(t *testing.T) {
	class := NewClass("Shape", "Urho3D::Shape")
	if class.Kind() != KindClass {
		t.Fatal("Wrong kind for Class")
	}
	if NewField("f", "s::f", TypeDesc{}, false, "").Kind() != KindField {
		t.Fatal("Wrong kind for Field")
	}
	if NewConstructor("Shape", "Urho3D::Shape::Shape", nil).Kind() != KindConstructor {
		t.Fatal("Wrong kind for Constructor")
	}
	if NewMethod("m", "s::m", nil, TypeDesc{}, false).Kind() != KindMethod {
		t.Fatal("Wrong kind for Method")
	}
}
