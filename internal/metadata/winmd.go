package metadata

import (
	"debug/pe"
	"fmt"

	"github.com/microsoft/go-winmd"
	"github.com/microsoft/go-winmd/flags"
	"go.uber.org/zap"
)

// WinMdReader loads class declarations out of an ECMA-335 metadata file
// into the same declaration tree the JSON frontend produces.
type WinMdReader struct {
	metadata winmd.Metadata
	// Classes already distilled, so base references resolve against
	// classes requested earlier. The input contract requires bases to
	// be listed before their subclasses.
	known map[string]*Class
}

// The map of metadata element types to boundary type names
var builtInElementTypes map[flags.ElementType]string = map[flags.ElementType]string{
	flags.ElementType_BOOLEAN: "bool",
	flags.ElementType_CHAR:    "uint16",
	flags.ElementType_STRING:  "string",
	flags.ElementType_I1:      "int8",
	flags.ElementType_I2:      "int16",
	flags.ElementType_I4:      "int32",
	flags.ElementType_I8:      "int64",
	flags.ElementType_U1:      "uint8",
	flags.ElementType_U2:      "uint16",
	flags.ElementType_U4:      "uint32",
	flags.ElementType_U8:      "uint64",
	flags.ElementType_R4:      "float32",
	flags.ElementType_R8:      "float64",
	flags.ElementType_VOID:    "void",
}

// NewWinMdReader opens the metadata file under the given path.
func NewWinMdReader(path string) (*WinMdReader, error) {
	peFile, err := pe.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open metadata file '%s': %w", path, err)
	}
	defer peFile.Close()

	md, err := winmd.New(peFile)
	if err != nil {
		return nil, fmt.Errorf("could not read metadata from '%s': %w", path, err)
	}

	return &WinMdReader{
		metadata: *md,
		known:    make(map[string]*Class),
	}, nil
}

// TryGetClass distills the type definition with the given name into a Class
// declaration, including its base chain, fields, constructors and methods.
func (reader *WinMdReader) TryGetClass(name string) (*Class, bool) {
	typeDef := reader.tryGetTypeDef(name)
	if typeDef == nil {
		return nil, false
	}

	class, err := reader.getClass(typeDef)
	if err != nil {
		Logger().Warn("skipping class",
			zap.String("name", name),
			zap.Error(err))
		return nil, false
	}

	reader.known[class.Name()] = class
	return class, true
}

func (reader *WinMdReader) getClass(typeDef *winmd.TypeDef) (*Class, error) {
	symbol := typeDef.Name.String()
	if ns := typeDef.Namespace.String(); ns != "" {
		symbol = ns + "::" + typeDef.Name.String()
	}

	var bases []*Class
	if base, found := reader.getBase(typeDef); found {
		bases = append(bases, base)
	}
	class := NewClass(typeDef.Name.String(), symbol, bases...)

	for i := typeDef.FieldList.Start; i < typeDef.FieldList.End; i++ {
		field, err := reader.metadata.Tables.Field.Record(i)
		if err != nil {
			return nil, fmt.Errorf("no matching field was found: %w", err)
		}
		decl, err := reader.getField(class, field)
		if err != nil {
			return nil, err
		}
		class.Add(decl)
	}

	for i := typeDef.MethodList.Start; i < typeDef.MethodList.End; i++ {
		methodDef, err := reader.metadata.Tables.MethodDef.Record(i)
		if err != nil {
			return nil, fmt.Errorf("no matching method was found: %w", err)
		}
		decl, err := reader.getMember(class, methodDef)
		if err != nil {
			return nil, err
		}
		if decl != nil {
			class.Add(decl)
		}
	}

	return class, nil
}

// Resolves the base class of a type definition against classes distilled so
// far. System.Object and unresolved references make the class a hierarchy
// root rather than failing, matching how unsupported declarations degrade.
func (reader *WinMdReader) getBase(typeDef *winmd.TypeDef) (*Class, bool) {
	typeRef, err := reader.metadata.Tables.TypeRef.Record(typeDef.Extends.Index)
	if err != nil {
		return nil, false
	}

	baseName := typeRef.Name.String()
	if baseName == "Object" && typeRef.Namespace.String() == "System" {
		return nil, false
	}

	base, found := reader.known[baseName]
	return base, found
}

func (reader *WinMdReader) getField(class *Class, field *winmd.Field) (Decl, error) {
	fieldSignature, err := reader.metadata.FieldSignature(field.Signature)
	if err != nil {
		return nil, fmt.Errorf("no matching field signature for field '%s' was found: %w", field.Name.String(), err)
	}
	fieldType, err := reader.getType(fieldSignature.Type)
	if err != nil {
		return nil, fmt.Errorf("could not determine field type: %w", err)
	}

	isStatic := field.Flags&flags.FieldAttributes_Static != 0
	symbol := class.Symbol() + "::" + field.Name.String()
	return NewField(field.Name.String(), symbol, fieldType, isStatic, ""), nil
}

// Distills a method definition into either a Constructor or a Method
// declaration. Metadata housekeeping members are dropped.
func (reader *WinMdReader) getMember(class *Class, methodDef *winmd.MethodDef) (Decl, error) {
	name := methodDef.Name.String()
	if name == ".cctor" {
		return nil, nil
	}

	methodSignature, err := reader.metadata.MethodDefSignature(methodDef.Signature)
	if err != nil {
		return nil, fmt.Errorf("no matching signature for method '%s' was found: %w", name, err)
	}

	paramNames := reader.getParamNames(methodDef)
	params := make([]Param, 0, len(methodSignature.Param))
	for i, methodParam := range methodSignature.Param {
		paramType, err := reader.getType(methodParam.Type)
		if err != nil {
			return nil, fmt.Errorf("could not determine type of parameter %d of '%s': %w", i, name, err)
		}
		paramName := fmt.Sprintf("arg%d", i)
		if i < len(paramNames) {
			paramName = paramNames[i]
		}
		params = append(params, Param{Name: paramName, Type: paramType})
	}

	if name == ".ctor" {
		symbol := class.Symbol() + "::" + class.Name()
		return NewConstructor(class.Name(), symbol, params), nil
	}

	returnType, err := reader.getType(methodSignature.RetType.Type)
	if err != nil {
		return nil, fmt.Errorf("could not determine return type of '%s': %w", name, err)
	}

	isVirtual := methodDef.Flags&flags.MethodAttributes_Virtual != 0
	symbol := class.Symbol() + "::" + name
	return NewMethod(name, symbol, params, returnType, isVirtual), nil
}

func (reader *WinMdReader) getParamNames(methodDef *winmd.MethodDef) []string {
	names := make([]string, 0)
	for idx := uint32(methodDef.ParamList.Start + 1); idx < uint32(methodDef.ParamList.End); idx++ {
		param, err := reader.metadata.Tables.Param.Record(winmd.Index(idx))
		if err != nil {
			break
		}
		names = append(names, param.Name.String())
	}
	return names
}

func (reader *WinMdReader) getType(sigType winmd.SigType) (TypeDesc, error) {
	builtInType, found := builtInElementTypes[sigType.Kind]
	if found {
		return TypeDesc{Name: builtInType, IsBuiltIn: true}, nil
	}

	if sigType.Kind == flags.ElementType_PTR {
		innerSigType, _ := sigType.Value.(winmd.SigType)
		innerType, err := reader.getType(innerSigType)
		innerType.IsPointer = true
		return innerType, err
	}

	if sigType.Kind == flags.ElementType_BYREF {
		innerSigType, _ := sigType.Value.(winmd.SigType)
		innerType, err := reader.getType(innerSigType)
		innerType.IsReference = true
		return innerType, err
	}

	typeDef, err := reader.getTypeDef(sigType)
	if err != nil {
		return TypeDesc{}, fmt.Errorf("no matching type definition for type was found: %w", err)
	}

	name := typeDef.Name.String()
	if ns := typeDef.Namespace.String(); ns != "" {
		name = ns + "::" + name
	}
	return TypeDesc{Name: name}, nil
}

func (reader *WinMdReader) getTypeDef(sigType winmd.SigType) (winmd.TypeDef, error) {
	sigTypeIndex, ok := sigType.Value.(winmd.CodedIndex)
	if !ok {
		return winmd.TypeDef{}, fmt.Errorf("unsupported element type %d", sigType.Kind)
	}

	retTypeRef, err := reader.metadata.Tables.TypeRef.Record(sigTypeIndex.Index)
	if err != nil {
		return winmd.TypeDef{}, fmt.Errorf("did not found matching type reference: %w", err)
	}

	for i := uint32(0); i < reader.metadata.Tables.TypeDef.Len; i++ {
		typeDef, err := reader.metadata.Tables.TypeDef.Record(winmd.Index(i))
		if err != nil {
			continue
		}
		if typeDef.Name.String() == retTypeRef.Name.String() && typeDef.Namespace.String() == retTypeRef.Namespace.String() {
			return *typeDef, nil
		}
	}

	return winmd.TypeDef{}, fmt.Errorf("did not found matching type definition for '%s'", retTypeRef.Name.String())
}

func (reader *WinMdReader) tryGetTypeDef(name string) *winmd.TypeDef {
	table := reader.metadata.Tables.TypeDef
	for idx := uint32(0); idx < table.Len; idx++ {
		typeDef, err := table.Record(winmd.Index(idx))
		if err != nil {
			continue
		}
		if typeDef.Name.String() == name || fullName(typeDef) == name {
			return typeDef
		}
	}

	return nil
}

func fullName(typeDef *winmd.TypeDef) string {
	if ns := typeDef.Namespace.String(); ns != "" {
		return ns + "." + typeDef.Name.String()
	}
	return typeDef.Name.String()
}
