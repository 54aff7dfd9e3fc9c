// App that generates managed bindings and the native bridge for a
// class-based native API.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"gourho/internal"
	"gourho/internal/generation"
	"gourho/internal/metadata"
)

func main() {
	var apiFilePath = flag.String("api", "", "The path to the JSON API dump produced by the native parser.")
	var metadataFilePath = flag.String("metadataPath", "", "The path to an ECMA-335 metadata file to read classes from instead of an API dump.")
	var metadataPackage = flag.String("metadataPackage", "", "The NuGet package to download the metadata file from when it is missing.")
	var inputFilePath = flag.String("input", "", "The path to the file listing class names to read from the metadata file, bases first.")
	var packageName = flag.String("packageName", "urho", "The name of the package with generated bindings. Default: urho")
	var libraryName = flag.String("library", "Urho3DCApi", "The name of the native shared library the bindings load. Default: Urho3DCApi")
	var headerName = flag.String("header", "Urho3D/Urho3DAll.h", "The native header the generated bridge includes.")
	var outputPath = flag.String("outputPath", "./output/", "The path where all generated files will be placed.")
	var forceClean = flag.Bool("forceCleanOutput", false, "If given forces cleaning output file before generation.")
	var verbose = flag.Bool("v", false, "Verbose generator diagnostics.")
	flag.Usage = func() {
		fmt.Println("App that generates managed bindings for a class-based native API.")
		flag.PrintDefaults()
	}

	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()
	metadata.SetLogger(logger)
	generation.SetLogger(logger)

	tree, err := loadTree(*apiFilePath, *metadataFilePath, *metadataPackage, *inputFilePath)
	if err != nil {
		log.Fatal(err)
	}
	if len(tree) == 0 {
		log.Fatal("No declarations were loaded, nothing to generate.")
	}

	if _, err := os.Stat(*outputPath); err == nil {
		internal.PanicOnError(ClearDirectoryIfNotEmpty(*outputPath, *forceClean))
	}

	generator := generation.NewGenerator(*packageName, *libraryName, *headerName, *outputPath)
	if err := generator.Generate(tree); err != nil {
		log.Fatal(err)
	}
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		internal.PanicOnError(err)
		return logger
	}
	logger, err := zap.NewProduction()
	internal.PanicOnError(err)
	return logger
}

func loadTree(apiFilePath, metadataFilePath, metadataPackage, inputFilePath string) ([]metadata.Decl, error) {
	if apiFilePath != "" {
		return metadata.LoadAPI(apiFilePath)
	}

	if metadataFilePath == "" || inputFilePath == "" {
		return nil, errors.New("either an API dump (-api) or a metadata file with an input list (-metadataPath, -input) is required")
	}

	if _, err := os.Stat(metadataFilePath); errors.Is(err, os.ErrNotExist) {
		if metadataPackage == "" {
			return nil, fmt.Errorf("metadata file '%s' does not exist and no package to download it from was given", metadataFilePath)
		}
		if err := metadata.DownloadMetadata(metadataPackage, metadataFilePath); err != nil {
			return nil, err
		}
	}

	reader, err := metadata.NewWinMdReader(metadataFilePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(inputFilePath)
	if err != nil {
		return nil, fmt.Errorf("input file could not be opened: %w", err)
	}
	defer file.Close()

	tree := make([]metadata.Decl, 0)
	fileScanner := bufio.NewScanner(file)
	for fileScanner.Scan() {
		name := strings.TrimSpace(fileScanner.Text())
		if name == "" {
			continue
		}

		class, found := reader.TryGetClass(name)
		if !found {
			fmt.Printf("Class '%s' was not found in the metadata file.\n", name)
			continue
		}
		tree = append(tree, class)
	}
	if err := fileScanner.Err(); err != nil {
		return nil, err
	}

	return tree, nil
}

func ClearDirectoryIfNotEmpty(path string, silent bool) error {
	directory, err := os.Open(path)
	if err != nil {
		return err
	}
	defer directory.Close()

	_, err = directory.Readdirnames(1)
	if err == io.EOF {
		return nil
	}

	if err != nil {
		return err
	}

	var response string
	if !silent {
		fmt.Print("Output directory is not empty. Continuation will result in removing all output file. Proceed? [Y/n]")
		fmt.Scan(&response)
		if strings.ToUpper(response) != "Y" {
			log.Fatal("Explicit agreement was not given. Exiting.")
		}
	}

	fmt.Println("Cleaning output directory.")
	return os.RemoveAll(path)
}
