package generation

import (
	"fmt"
	"strings"

	"gourho/internal/metadata"
)

// BridgePass emits the native-side bridge source: extern "C" functions with
// the same deterministic symbols the managed side binds against, wrapping
// constructors, destructors, field access, method calls and virtual
// dispatch of the native classes.
type BridgePass struct {
	printer Printer
	mapper  TypeMapper
}

// NewBridgePass prepares a pass wrapping the API declared under the given
// native header.
func NewBridgePass(header string, mapper TypeMapper) *BridgePass {
	pass := &BridgePass{mapper: mapper}
	pass.printer.Line("// Code generated by gourho. DO NOT EDIT.")
	pass.printer.Linef("#include <%s>", header)
	pass.printer.Line("")
	pass.printer.Line("extern \"C\"")
	pass.printer.Line("{")
	pass.printer.Line("")
	return pass
}

func (p *BridgePass) Visit(decl metadata.Decl, event metadata.Event) error {
	switch node := decl.(type) {
	case *metadata.Class:
		if event == metadata.EventEnter {
			p.enterClass(node)
		} else {
			p.printer.Line("")
		}
		return nil
	case *metadata.Field:
		return p.field(node)
	case *metadata.Constructor:
		return p.constructor(node)
	case *metadata.Method:
		return p.method(node)
	default:
		return nil
	}
}

// String returns the assembled bridge source, closing the linkage block.
func (p *BridgePass) String() string {
	return p.printer.String() + "}\n"
}

func (p *BridgePass) enterClass(class *metadata.Class) {
	p.printer.Linef("// %s", class.Symbol())

	// The destructor thunk is emitted for every class, the explicit
	// native destructor may not exist but lifetime collapse must.
	p.printer.Linef("URHO3D_EXPORT_API void %s(%s* instance)", DestructorName(class), class.Symbol())
	p.printer.Line("{")
	p.printer.Indented(func() {
		p.printer.Line("delete instance;")
	})
	p.printer.Line("}")
	p.printer.Line("")
}

func (p *BridgePass) field(field *metadata.Field) error {
	if field.IsStatic() {
		return nil
	}

	class := field.Owner()
	directive := p.mapper.DirectiveFor(field.Type())

	returnType := nativeType(field.Type())
	access := fmt.Sprintf("cls->%s", field.Name())
	if directive == Textual {
		returnType = "const char*"
		access += ".CString()"
	}

	p.printer.Linef("URHO3D_EXPORT_API %s %s(%s* cls)", returnType, GetterName(field), class.Symbol())
	p.printer.Line("{")
	p.printer.Indented(func() {
		p.printer.Linef("return %s;", access)
	})
	p.printer.Line("}")
	p.printer.Line("")

	valueType := nativeType(field.Type())
	if directive == Textual {
		valueType = "const char*"
	}
	p.printer.Linef("URHO3D_EXPORT_API void %s(%s* cls, %s value)", SetterName(field), class.Symbol(), valueType)
	p.printer.Line("{")
	p.printer.Indented(func() {
		p.printer.Linef("cls->%s = value;", field.Name())
	})
	p.printer.Line("}")
	p.printer.Line("")

	return nil
}

func (p *BridgePass) constructor(ctor *metadata.Constructor) error {
	class := ctor.Owner()
	p.printer.Linef("URHO3D_EXPORT_API %s* %s(%s)", class.Symbol(), FunctionName(ctor), parameterList(ctor.Params()))
	p.printer.Line("{")
	p.printer.Indented(func() {
		p.printer.Linef("return new %s(%s);", class.Symbol(), argumentList(ctor.Params()))
	})
	p.printer.Line("}")
	p.printer.Line("")

	return nil
}

func (p *BridgePass) method(method *metadata.Method) error {
	class := method.Owner()

	returnType := nativeType(method.ReturnType())
	if p.mapper.DirectiveFor(method.ReturnType()) == Textual {
		returnType = "const char*"
	}

	params := parameterList(method.Params())
	signature := fmt.Sprintf("%s* instance", class.Symbol())
	if params != "" {
		signature += ", " + params
	}

	invocation := fmt.Sprintf("instance->%s(%s)", method.Name(), argumentList(method.Params()))
	p.printer.Linef("URHO3D_EXPORT_API %s %s(%s)", returnType, FunctionName(method), signature)
	p.printer.Line("{")
	p.printer.Indented(func() {
		if returnType == "void" {
			p.printer.Linef("%s;", invocation)
		} else if returnType == "const char*" {
			p.printer.Linef("return %s.CString();", invocation)
		} else {
			p.printer.Linef("return %s;", invocation)
		}
	})
	p.printer.Line("}")
	p.printer.Line("")

	if !method.IsVirtual() {
		return nil
	}

	// Storage and registration for the managed override of a native
	// virtual method. The native class invokes the installed pointer
	// through its script glue when present.
	callback := fmt.Sprintf("%s_callback", CallbackSetterName(method))
	p.printer.Linef("typedef %s(*%sType)(%s);", returnType, callback, signature)
	p.printer.Linef("static %sType %s = nullptr;", callback, callback)
	p.printer.Linef("URHO3D_EXPORT_API void %s(%s* instance, %sType callback)", CallbackSetterName(method), class.Symbol(), callback)
	p.printer.Line("{")
	p.printer.Indented(func() {
		p.printer.Linef("%s = callback;", callback)
	})
	p.printer.Line("}")
	p.printer.Line("")

	return nil
}

func nativeType(t metadata.TypeDesc) string {
	name := t.Name
	if t.IsPointer {
		name += "*"
	}
	if t.IsReference {
		name += "&"
	}
	return name
}

func parameterList(params []metadata.Param) string {
	parts := make([]string, 0, len(params))
	for i, param := range params {
		parts = append(parts, fmt.Sprintf("%s %s", nativeType(param.Type), paramName(param.Name, i)))
	}
	return strings.Join(parts, ", ")
}

func argumentList(params []metadata.Param) string {
	parts := make([]string, 0, len(params))
	for i, param := range params {
		parts = append(parts, paramName(param.Name, i))
	}
	return strings.Join(parts, ", ")
}
