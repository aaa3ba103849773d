// Package resources embeds the application's icons.
package resources

import (
	"embed"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
)

const iconDir = "icons/"

// AppIcon is the file name of the application and tray icon.
const AppIcon = "overtimer.svg"

//go:embed icons/*.svg
var iconFS embed.FS

var iconCache sync.Map

// Icon returns a Fyne resource for the given icon file.
func Icon(fileName string) (fyne.Resource, error) {
	path := iconDir + fileName
	if cached, ok := iconCache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := iconFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load icon %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(fileName, data)
	iconCache.Store(path, resource)
	return resource, nil
}

// MustIcon returns a Fyne resource or panics on error.
func MustIcon(fileName string) fyne.Resource {
	resource, err := Icon(fileName)
	if err != nil {
		panic(err)
	}
	return resource
}
