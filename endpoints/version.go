package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
)

const versionEndpointValueNotSet = "not-set"

// NewVersionEndpoint returns the latest git tag as the version and commit hash as the revision from which the binary was built,
// along with the native SDK version the sandbox claims to run and the URL apps should point their bridge client at.
func NewVersionEndpoint(version, revision, sdkVersion, externalURL string) httprouter.Handle {
	response, err := prepareVersionEndpointResponse(version, revision, sdkVersion, externalURL)
	if err != nil {
		glog.Fatalf("error creating /version endpoint response: %v", err)
	}

	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(response)
	}
}

func prepareVersionEndpointResponse(version, revision, sdkVersion, externalURL string) (json.RawMessage, error) {
	if version == "" {
		version = versionEndpointValueNotSet
	}
	if revision == "" {
		revision = versionEndpointValueNotSet
	}

	return json.Marshal(struct {
		Revision    string `json:"revision"`
		Version     string `json:"version"`
		SDKVersion  string `json:"sdkVersion,omitempty"`
		ExternalURL string `json:"externalUrl,omitempty"`
	}{
		Revision:    revision,
		Version:     version,
		SDKVersion:  sdkVersion,
		ExternalURL: externalURL,
	})
}
