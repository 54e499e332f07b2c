package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// s3Module is reported alongside the build so storage issues can be matched
// to an SDK release.
const s3Module = "github.com/aws/aws-sdk-go-v2/service/s3"

var readBuildInfo = debug.ReadBuildInfo

func Short() string {
	return Version
}

func Detailed() string {
	lines := []string{
		"version: " + Version,
		"commit: " + Commit,
		"build date: " + Date,
		fmt.Sprintf("go: %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}
	if sdk := dependencyVersion(s3Module); sdk != "" {
		lines = append(lines, "s3 sdk: "+sdk)
	}
	return strings.Join(lines, "\n")
}

func dependencyVersion(path string) string {
	info, ok := readBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return ""
}
