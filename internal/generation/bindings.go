package generation

import (
	"fmt"
	"io"

	"github.com/dave/jennifer/jen"
	"go.uber.org/zap"

	"gourho/internal/metadata"
)

// BindingsPass emits the managed-side bindings: for every class the identity
// cache, construction, disposal and finalization machinery, and for every
// member the boundary function wrapping the native entry point.
type BindingsPass struct {
	file   *jen.File
	mapper TypeMapper
}

// NewBindingsPass prepares a pass emitting into a file of the given package,
// binding against the given native shared library.
func NewBindingsPass(packageName, library string, mapper TypeMapper) *BindingsPass {
	file := jen.NewFile(packageName)
	file.HeaderComment("Code generated by gourho. DO NOT EDIT.")

	file.Var().Id("native").Op("=").Qual("syscall", "NewLazyDLL").Call(jen.Lit(library))

	// Reference counting entry points of the known ref-counted base.
	file.Var().Id("procAddRef").Op("=").Id("native").Dot("NewProc").Call(jen.Lit(AddRefName()))
	file.Var().Id("procReleaseRef").Op("=").Id("native").Dot("NewProc").Call(jen.Lit(ReleaseRefName()))

	// goString copies native text by value as it crosses the boundary.
	file.Func().Id("goString").Params(jen.Id("ptr").Uintptr()).String().Block(
		jen.If(jen.Id("ptr").Op("==").Lit(0)).Block(
			jen.Return(jen.Lit("")),
		),
		jen.Id("length").Op(":=").Lit(0),
		jen.For(jen.Op("*").Parens(jen.Op("*").Byte()).Parens(jen.Qual("unsafe", "Pointer").Call(jen.Id("ptr").Op("+").Uintptr().Parens(jen.Id("length")))).Op("!=").Lit(0)).Block(
			jen.Id("length").Op("++"),
		),
		jen.Return(jen.String().Parens(jen.Qual("unsafe", "Slice").Call(
			jen.Parens(jen.Op("*").Byte()).Parens(jen.Qual("unsafe", "Pointer").Call(jen.Id("ptr"))),
			jen.Id("length"),
		))),
	)

	// cString hands a NUL terminated copy of s to the native side.
	file.Func().Id("cString").Params(jen.Id("s").String()).Uintptr().Block(
		jen.Id("buffer").Op(":=").Append(jen.Index().Byte().Parens(jen.Id("s")), jen.Lit(0)),
		jen.Return(jen.Uintptr().Parens(jen.Qual("unsafe", "Pointer").Call(jen.Op("&").Id("buffer").Index(jen.Lit(0))))),
	)

	file.Func().Id("boolArg").Params(jen.Id("v").Bool()).Uintptr().Block(
		jen.If(jen.Id("v")).Block(
			jen.Return(jen.Lit(1)),
		),
		jen.Return(jen.Lit(0)),
	)

	return &BindingsPass{file: file, mapper: mapper}
}

func (p *BindingsPass) Visit(decl metadata.Decl, event metadata.Event) error {
	switch node := decl.(type) {
	case *metadata.Class:
		if event == metadata.EventEnter {
			p.enterClass(node)
		}
		// Nothing to close on exit, emitted scopes are structural.
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

// Render writes the assembled file. Rendering after an aborted walk is a
// caller error, the pass makes no partial-output guarantee.
func (p *BindingsPass) Render(w io.Writer) error {
	return p.file.Render(w)
}

func (p *BindingsPass) enterClass(class *metadata.Class) {
	root := class.Root()
	refCounted := class.IsRefCounted()

	p.file.Comment(class.Symbol())
	p.file.Type().Id(class.Name()).StructFunc(func(g *jen.Group) {
		if root == class {
			// The hierarchy root owns the instance handle and the
			// disposed counter for the whole chain.
			g.Id("instance").Uintptr()
			g.Id("disposed").Int32()
		} else {
			g.Id(class.Bases()[0].Name())
		}
	})

	if root == class {
		// The API always hands back the same wrapper for a live
		// native handle.
		p.file.Var().Id(CacheName(class)).Qual("sync", "Map")
	}

	// A zero handle defers construction, used while a subclass
	// constructor is still creating the native object.
	p.file.Func().Id("new" + class.Name()).Params(jen.Id("instance").Uintptr()).Op("*").Id(class.Name()).BlockFunc(func(g *jen.Group) {
		g.Id("obj").Op(":=").Op("&").Id(class.Name()).Values()
		g.If(jen.Id("instance").Op("!=").Lit(0)).BlockFunc(func(g *jen.Group) {
			g.Id("obj").Dot("instance").Op("=").Id("instance")
			if refCounted {
				g.Id("procAddRef").Dot("Call").Call(jen.Id("instance"))
			}
		})
		g.Qual("runtime", "SetFinalizer").Call(jen.Id("obj"), jen.Parens(jen.Op("*").Id(class.Name())).Dot("Dispose"))
		g.Return(jen.Id("obj"))
	})

	// Concurrent and repeated disposal perform the release at most once.
	p.file.Func().Params(jen.Id("obj").Op("*").Id(class.Name())).Id("Dispose").Params().Block(
		jen.If(jen.Qual("sync/atomic", "AddInt32").Call(jen.Op("&").Id("obj").Dot("disposed"), jen.Lit(1)).Op("==").Lit(1)).BlockFunc(func(g *jen.Group) {
			g.Id(CacheName(class)).Dot("Delete").Call(jen.Id("obj").Dot("instance"))
			if refCounted {
				g.Id("procReleaseRef").Dot("Call").Call(jen.Id("obj").Dot("instance"))
			} else {
				g.Id(DestructorName(class)).Call(jen.Id("obj").Dot("instance"))
			}
			g.Id("obj").Dot("instance").Op("=").Lit(0)
		}),
	)

	// The destructor thunk exists even when the native class declares no
	// explicit destructor, native lifetime must always be collapsible
	// from this side.
	p.procVar(DestructorName(class))
	p.file.Func().Id(DestructorName(class)).Params(jen.Id("instance").Uintptr()).Block(
		jen.Id("proc" + DestructorName(class)).Dot("Call").Call(jen.Id("instance")),
	)
}

func (p *BindingsPass) field(field *metadata.Field) error {
	if field.IsStatic() {
		// ToDo: support static fields
		Logger().Debug("skipping static field", zap.String("field", field.Symbol()))
		return nil
	}

	returnRepr, err := p.mapper.ReturnRepresentation(field.Type(), false)
	if err != nil {
		return fmt.Errorf("field '%s': %w", field.Symbol(), err)
	}
	paramRepr, err := p.mapper.ParamRepresentation(field.Type())
	if err != nil {
		return fmt.Errorf("field '%s': %w", field.Symbol(), err)
	}

	// Getter. Native getters return by reference internally, so copying
	// textual data by value here is always safe.
	getter := GetterName(field)
	p.procVar(getter)
	p.file.Func().Id(getter).Params(jen.Id("instance").Uintptr()).Add(reprType(returnRepr)).BlockFunc(func(g *jen.Group) {
		callBoundary(g, getter, returnRepr, jen.Id("instance"))
	})

	// Setter
	setter := SetterName(field)
	p.procVar(setter)
	p.file.Func().Id(setter).Params(jen.Id("instance").Uintptr(), jen.Id("value").Add(reprType(paramRepr))).BlockFunc(func(g *jen.Group) {
		callBoundary(g, setter, "", jen.Id("instance"), argExpr(paramRepr, "value"))
	})

	return nil
}

func (p *BindingsPass) constructor(ctor *metadata.Constructor) error {
	params, args, err := p.mapParams(ctor.Params())
	if err != nil {
		return fmt.Errorf("constructor '%s': %w", ctor.Symbol(), err)
	}

	name := FunctionName(ctor)
	p.procVar(name)
	p.file.Func().Id(name).Params(params...).Uintptr().BlockFunc(func(g *jen.Group) {
		callBoundary(g, name, "uintptr", args...)
	})

	return nil
}

func (p *BindingsPass) method(method *metadata.Method) error {
	params, args, err := p.mapParams(method.Params())
	if err != nil {
		return fmt.Errorf("method '%s': %w", method.Symbol(), err)
	}
	returnRepr, err := p.mapper.ReturnRepresentation(method.ReturnType(), true)
	if err != nil {
		return fmt.Errorf("method '%s': %w", method.Symbol(), err)
	}

	name := FunctionName(method)
	p.procVar(name)
	p.file.Func().Id(name).Params(append([]jen.Code{jen.Id("instance").Uintptr()}, params...)...).Add(reprType(returnRepr)).BlockFunc(func(g *jen.Group) {
		callBoundary(g, name, returnRepr, append([]jen.Code{jen.Id("instance")}, args...)...)
	})

	if !method.IsVirtual() {
		return nil
	}

	// Virtual dispatch thunk: a callback descriptor matching the method
	// signature and a registration function installing the override the
	// native side calls instead of its default implementation.
	delegate := DelegateName(method)
	p.file.Type().Id(delegate).Func().Params(append([]jen.Code{jen.Id("instance").Uintptr()}, params...)...).Add(reprType(returnRepr))

	setter := CallbackSetterName(method)
	p.procVar(setter)
	p.file.Func().Id(setter).Params(jen.Id("instance").Uintptr(), jen.Id("callback").Id(delegate)).Block(
		jen.Id("proc"+setter).Dot("Call").Call(jen.Id("instance"), jen.Qual("syscall", "NewCallback").Call(jen.Id("callback"))),
	)

	return nil
}

// procVar declares the lazily resolved native entry point a boundary
// function calls through.
func (p *BindingsPass) procVar(name string) {
	p.file.Var().Id("proc" + name).Op("=").Id("native").Dot("NewProc").Call(jen.Lit(name))
}

func (p *BindingsPass) mapParams(params []metadata.Param) (decls []jen.Code, args []jen.Code, err error) {
	for i, param := range params {
		repr, err := p.mapper.ParamRepresentation(param.Type)
		if err != nil {
			return nil, nil, err
		}
		name := paramName(param.Name, i)
		decls = append(decls, jen.Id(name).Add(reprType(repr)))
		args = append(args, argExpr(repr, name))
	}
	return decls, args, nil
}

// callBoundary emits the proc call and the conversion of its raw result
// back into the mapped representation.
func callBoundary(g *jen.Group, name string, returnRepr string, args ...jen.Code) {
	call := jen.Id("proc" + name).Dot("Call").Call(args...)
	if returnRepr == "" {
		g.Add(call)
		return
	}
	g.List(jen.Id("r1"), jen.Id("_"), jen.Id("_")).Op(":=").Add(call)
	g.Return(returnExpr(returnRepr))
}

func returnExpr(repr string) jen.Code {
	switch repr {
	case "string":
		return jen.Id("goString").Call(jen.Id("r1"))
	case "bool":
		return jen.Id("r1").Op("!=").Lit(0)
	case "float32":
		return jen.Qual("math", "Float32frombits").Call(jen.Uint32().Parens(jen.Id("r1")))
	case "float64":
		return jen.Qual("math", "Float64frombits").Call(jen.Uint64().Parens(jen.Id("r1")))
	case "uintptr":
		return jen.Id("r1")
	default:
		return jen.Id(repr).Parens(jen.Id("r1"))
	}
}

func argExpr(repr string, name string) jen.Code {
	switch repr {
	case "string":
		return jen.Id("cString").Call(jen.Id(name))
	case "bool":
		return jen.Id("boolArg").Call(jen.Id(name))
	case "float32":
		return jen.Uintptr().Parens(jen.Qual("math", "Float32bits").Call(jen.Id(name)))
	case "float64":
		return jen.Uintptr().Parens(jen.Qual("math", "Float64bits").Call(jen.Id(name)))
	case "uintptr":
		return jen.Id(name)
	default:
		return jen.Uintptr().Parens(jen.Id(name))
	}
}

func reprType(repr string) jen.Code {
	switch repr {
	case "":
		return jen.Null()
	case "string":
		return jen.String()
	case "bool":
		return jen.Bool()
	case "uintptr":
		return jen.Uintptr()
	default:
		return jen.Id(repr)
	}
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

func paramName(name string, index int) string {
	if name == "" {
		return fmt.Sprintf("arg%d", index)
	}
	if goKeywords[name] {
		return name + "_"
	}
	return name
}
