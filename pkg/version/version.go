// Package version reports the repozip build stamped in at link time.
//
//	go build -ldflags "-X github.com/quantmind-br/repozip/pkg/version.Version=1.4.0 \
//	  -X github.com/quantmind-br/repozip/pkg/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name printed by --version
const Name = "repozip"

// Overridden with -ldflags -X; unstamped builds report dev
var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "unknown"
)

// Info describes the running binary
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func Get() Info {
	return Info{
		Name:      Name,
		Version:   Version,
		BuildTime: BuildTime,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// String renders the line printed by repozip --version
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s %s/%s)",
		i.Name, i.Version, i.Commit, i.BuildTime, i.GoVersion, i.OS, i.Arch)
}

// Short is the bare version, used as cobra's Version field
func Short() string {
	return Version
}

func Full() string {
	return Get().String()
}
