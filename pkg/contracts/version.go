package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the engine.
	Version = "0.1.0"

	// DataFormatVersion is the version of the result-table data format.
	DataFormatVersion = "v1"

	// APIVersion is the version of the HTTP query API.
	APIVersion = "v1"
)

// VersionInfo describes the build for diagnostics endpoints.
type VersionInfo struct {
	Version           string `json:"version"`
	DataFormatVersion string `json:"data_format_version"`
	APIVersion        string `json:"api_version"`
	GoVersion         string `json:"go_version"`
	Platform          string `json:"platform"`
}

// GetVersionInfo returns the complete version information.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:           Version,
		DataFormatVersion: DataFormatVersion,
		APIVersion:        APIVersion,
		GoVersion:         runtime.Version(),
		Platform:          fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
