package metadata

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
	"go.uber.org/zap"
)

const definitionAddress string = "https://api.nuget.org/v3/index.json"

// DownloadMetadata fetches the newest release of the given metadata NuGet
// package and stores its *.winmd payload under metadataFileName.
func DownloadMetadata(packageName, metadataFileName string) error {
	packageName = strings.ToLower(packageName)

	baseAddress, err := getBaseAddress()
	if err != nil {
		return err
	}

	versionsResponse, err := queryGet(fmt.Sprintf("%s%s/index.json", baseAddress, packageName))
	if err != nil {
		return fmt.Errorf("could not list versions of '%s': %w", packageName, err)
	}
	versions, err := parse[map[string][]string](versionsResponse)
	if err != nil {
		return fmt.Errorf("could not parse version list of '%s': %w", packageName, err)
	}

	orderedVersions := make([]*version.Version, 0, len(versions["versions"]))
	for _, versionString := range versions["versions"] {
		parsed, err := version.NewVersion(versionString)
		if err != nil {
			return fmt.Errorf("error parsing version '%s': %w", versionString, err)
		}
		orderedVersions = append(orderedVersions, parsed)
	}
	if len(orderedVersions) == 0 {
		return fmt.Errorf("no published versions of '%s'", packageName)
	}

	sort.Sort(version.Collection(orderedVersions))
	newest := orderedVersions[len(orderedVersions)-1].Original()
	Logger().Info("downloading metadata package",
		zap.String("package", packageName),
		zap.String("version", newest))

	nugetBytes, err := queryGet(fmt.Sprintf("%s%s/%s/%s.%s.nupkg", baseAddress, packageName, newest, packageName, newest))
	if err != nil {
		return fmt.Errorf("could not download '%s' %s: %w", packageName, newest, err)
	}

	bytesReader := bytes.NewReader(nugetBytes)
	nuget, err := zip.NewReader(bytesReader, int64(bytesReader.Len()))
	if err != nil {
		return fmt.Errorf("could not open package archive: %w", err)
	}
	for _, file := range nuget.File {
		if filepath.Ext(file.Name) == ".winmd" {
			reader, err := file.Open()
			if err != nil {
				return fmt.Errorf("could not open '%s' in package archive: %w", file.Name, err)
			}
			metadataBytes, err := io.ReadAll(reader)
			reader.Close()
			if err != nil {
				return fmt.Errorf("could not extract '%s': %w", file.Name, err)
			}
			return os.WriteFile(metadataFileName, metadataBytes, 0644)
		}
	}

	return fmt.Errorf("package '%s' %s holds no metadata file", packageName, newest)
}

func getBaseAddress() (string, error) {
	response, err := queryGet(definitionAddress)
	if err != nil {
		return "", fmt.Errorf("could not query the package index: %w", err)
	}
	index, err := parse[nugetIndex](response)
	if err != nil {
		return "", fmt.Errorf("could not parse the package index: %w", err)
	}

	for _, resource := range index.Resources {
		if strings.Contains(resource.Type, "PackageBaseAddress") {
			return resource.Id, nil
		}
	}

	return "", fmt.Errorf("the package index exposes no base address")
}

func parse[T interface{}](source []byte) (T, error) {
	var parsedBody T
	err := json.Unmarshal(source, &parsedBody)
	return parsedBody, err
}

func queryGet(url string) ([]byte, error) {
	client := http.Client{}
	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()
	if response.StatusCode != 200 {
		return nil, fmt.Errorf("'%s' answered %s", url, response.Status)
	}

	return io.ReadAll(response.Body)
}

type nugetIndex struct {
	Resources []nugetResource `json:"resources"`
}

type nugetResource struct {
	Id   string `json:"@id"`
	Type string `json:"@type"`
}
