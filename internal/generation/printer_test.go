package generation

import (
	"testing"
)

func TestPrinterIndentation(t *testing.T) {
	var printer Printer
	printer.Line("a")
	printer.Indented(func() {
		printer.Line("b")
		printer.Indented(func() {
			printer.Linef("%s", "c")
		})
		printer.Line("d")
	})
	printer.Line("e")

	expected := "a\n    b\n        c\n    d\ne\n"
	if printer.String() != expected {
		t.Fatalf("Expected %q, got %q", expected, printer.String())
	}
}

func TestPrinterEmptyLineHasNoIndentation(t *testing.T) {
	var printer Printer
	printer.Indented(func() {
		printer.Line("")
	})
	if printer.String() != "\n" {
		t.Fatalf("Empty lines must not carry indentation, got %q", printer.String())
	}
}

func TestPrinterRestoresLevelOnPanic(t *testing.T) {
	var printer Printer
	func() {
		defer func() { recover() }()
		printer.Indented(func() {
			panic("emission failed")
		})
	}()
	printer.Line("after")
	if printer.String() != "after\n" {
		t.Fatalf("Indentation must balance on every exit path, got %q", printer.String())
	}
}
