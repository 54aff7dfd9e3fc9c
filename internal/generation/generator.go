package generation

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"gourho/internal/metadata"
)

// Generator drives the emission passes over a declaration tree and writes
// one source artifact per pass. Generation is a finite batch transformation:
// it either produces complete files or fails outright, a failed pass is
// simply re-run after the cause is fixed.
type Generator struct {
	PackageName string
	Library     string
	Header      string
	OutputPath  string
	mapper      TypeMapper
}

func NewGenerator(packageName, library, header, outputPath string) Generator {
	return Generator{
		PackageName: packageName,
		Library:     library,
		Header:      header,
		OutputPath:  outputPath,
		mapper:      DefaultTypeMapper{},
	}
}

// Generate runs the bindings and bridge passes over the tree in document
// order. Each pass renders fully in memory before anything touches the
// output path, a write failure aborts without leaving partial output.
func (generator *Generator) Generate(tree []metadata.Decl) error {
	err := os.Mkdir(generator.OutputPath, os.ModePerm)
	if err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	if err := generator.generateBindings(tree); err != nil {
		return err
	}
	if err := generator.generateBridge(tree); err != nil {
		return err
	}

	Logger().Info("generation finished",
		zap.Int("declarations", len(tree)),
		zap.String("outputPath", generator.OutputPath))
	return nil
}

func (generator *Generator) generateBindings(tree []metadata.Decl) error {
	pass := NewBindingsPass(generator.PackageName, generator.Library+".dll", generator.mapper)
	if err := metadata.Walk(tree, pass); err != nil {
		return fmt.Errorf("bindings pass: %w", err)
	}

	var rendered bytes.Buffer
	if err := pass.Render(&rendered); err != nil {
		return fmt.Errorf("bindings pass: %w", err)
	}

	path := filepath.Join(generator.OutputPath, generator.PackageName+".go")
	if err := os.WriteFile(path, rendered.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed writing '%s': %w", path, err)
	}

	Logger().Debug("wrote bindings", zap.String("path", path))
	return nil
}

func (generator *Generator) generateBridge(tree []metadata.Decl) error {
	pass := NewBridgePass(generator.Header, generator.mapper)
	if err := metadata.Walk(tree, pass); err != nil {
		return fmt.Errorf("bridge pass: %w", err)
	}

	path := filepath.Join(generator.OutputPath, generator.Library+".cpp")
	if err := os.WriteFile(path, []byte(pass.String()), 0644); err != nil {
		return fmt.Errorf("failed writing '%s': %w", path, err)
	}

	Logger().Debug("wrote bridge", zap.String("path", path))
	return nil
}
