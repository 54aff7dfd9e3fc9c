package metadata

import (
	"errors"
	"fmt"
	"testing"
)

type recordingVisitor struct {
	trace []string
	fail  error
}

func (v *recordingVisitor) Visit(decl Decl, event Event) error {
	var tag string
	switch event {
	case EventEnter:
		tag = "enter"
	case EventExit:
		tag = "exit"
	default:
		tag = "visit"
	}
	v.trace = append(v.trace, fmt.Sprintf("%s %s", tag, decl.Name()))
	return v.fail
}

// unknownDecl simulates a declaration kind the generator does not know.
type unknownDecl struct {
	declBase
}

func (unknownDecl) Kind() Kind { return KindUnknown }

func TestWalkOrderAndNesting(t *testing.T) {
	class := NewClass("Shape", "Urho3D::Shape")
	class.Add(
		NewField("Name", "Urho3D::Shape::Name", TypeDesc{Name: "Urho3D::String"}, false, ""),
		NewConstructor("Shape", "Urho3D::Shape::Shape", nil),
		NewMethod("Area", "Urho3D::Shape::Area", nil, TypeDesc{Name: "float", IsBuiltIn: true}, true),
	)

	visitor := &recordingVisitor{}
	if err := Walk([]Decl{class}, visitor); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	expected := []string{
		"enter Shape",
		"visit Name",
		"visit Shape",
		"visit Area",
		"exit Shape",
	}
	if len(visitor.trace) != len(expected) {
		t.Fatalf("Expected %d notifications, got %d: %v", len(expected), len(visitor.trace), visitor.trace)
	}
	for i, want := range expected {
		if visitor.trace[i] != want {
			t.Fatalf("Notification %d: expected %q, got %q", i, want, visitor.trace[i])
		}
	}
}

func TestWalkPassesThroughUnknownKinds(t *testing.T) {
	class := NewClass("Shape", "Urho3D::Shape")
	tree := []Decl{
		&unknownDecl{declBase{name: "mystery", symbol: "mystery"}},
		class,
	}

	visitor := &recordingVisitor{}
	if err := Walk(tree, visitor); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	for _, entry := range visitor.trace {
		if entry == "visit mystery" {
			t.Fatal("Unknown kinds should not be notified")
		}
	}
	if len(visitor.trace) != 2 {
		t.Fatalf("Expected enter/exit for the class only, got %v", visitor.trace)
	}
}

func TestWalkPropagatesVisitorError(t *testing.T) {
	class := NewClass("Shape", "Urho3D::Shape")
	failure := errors.New("boundary type unresolvable")
	visitor := &recordingVisitor{fail: failure}

	err := Walk([]Decl{class}, visitor)
	if !errors.Is(err, failure) {
		t.Fatalf("Expected the visitor error unchanged, got %v", err)
	}
	if len(visitor.trace) != 1 {
		t.Fatalf("Walk should abort on first error, got %v", visitor.trace)
	}
}
