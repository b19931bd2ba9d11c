package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Set with -ldflags "-X github.com/mutablelogic/go-llamachat/pkg/version.GitTag=..."
var (
	GitTag    string
	GitBranch string
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Version returns the tag, branch or revision the binary was built from
func Version() string {
	if GitTag != "" {
		return GitTag
	}
	if GitBranch != "" {
		return GitBranch
	}
	if revision := setting("vcs.revision"); len(revision) >= 12 {
		return revision[:12]
	}
	return "dev"
}

// UserAgent returns the user agent sent to the inference server
func UserAgent(execName string) string {
	return fmt.Sprintf("%s/%s (%s/%s)", execName, Version(), runtime.GOOS, runtime.GOARCH)
}

// JSON returns the build metadata for the version command
func JSON(execName string) []byte {
	metadata := map[string]string{
		"name":     execName,
		"version":  Version(),
		"compiler": runtime.Version(),
		"platform": runtime.GOOS + "/" + runtime.GOARCH,
	}
	if GitTag != "" {
		metadata["tag"] = GitTag
	}
	if GitBranch != "" {
		metadata["branch"] = GitBranch
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Path != "" {
		metadata["source"] = info.Main.Path
	}
	for key, name := range map[string]string{
		"vcs.revision": "hash",
		"vcs.time":     "build_time",
	} {
		if value := setting(key); value != "" {
			metadata[name] = value
		}
	}
	if setting("vcs.modified") == "true" {
		metadata["modified"] = "true"
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		panic(err)
	}
	return data
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// setting returns a build setting, or an empty string
func setting(key string) string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == key {
				return s.Value
			}
		}
	}
	return ""
}
