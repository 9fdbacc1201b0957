package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
)

const versionNotSet = "not-set"

// supportedTCFVersions lists the consent string versions /decode accepts.
var supportedTCFVersions = []int{1, 2}

type versionResponse struct {
	Revision    string `json:"revision"`
	Version     string `json:"version"`
	TCFVersions []int  `json:"tcf_versions"`
}

// NewVersionEndpoint reports the release and commit the binary was built from, plus the TCF
// versions it decodes. Empty values are reported as "not-set".
func NewVersionEndpoint(version, revision string) http.HandlerFunc {
	body, err := json.Marshal(versionResponse{
		Revision:    valueOrNotSet(revision),
		Version:     valueOrNotSet(version),
		TCFVersions: supportedTCFVersions,
	})
	if err != nil {
		glog.Fatalf("error creating /version endpoint response: %v", err)
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}

func valueOrNotSet(value string) string {
	if value == "" {
		return versionNotSet
	}
	return value
}
