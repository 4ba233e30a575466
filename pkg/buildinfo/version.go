// Package buildinfo carries the version stamped into a modsync binary:
//
//	go build -ldflags "-X github.com/matzehuels/modsync/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/modsync/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/modsync/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Version also ends up in the User-Agent sent to the mod site.
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build stamp reported by the serve status API.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func Get() Info { return Info{Version: Version, Commit: Commit, Date: Date} }

// Template is the cobra version template for "modsync --version".
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
