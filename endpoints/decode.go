package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buger/jsonparser"
	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/tcstring/errortypes"
	"github.com/prebid/tcstring/metrics"
	"github.com/prebid/tcstring/vendorconsent"
)

// maxEnvelopeBytes leaves room for the JSON object around the consent string in POST bodies.
const maxEnvelopeBytes = 1024

type decodeResponse struct {
	Version uint8                 `json:"version"`
	Consent vendorconsent.Consent `json:"consent"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// DecodeEndpoint serves consent string decodes over HTTP.
type DecodeEndpoint struct {
	maxConsentLength int
	metricsEngine    metrics.MetricsEngine
	parse            func(consent string) (vendorconsent.Consent, error)
}

// NewDecodeEndpoint builds the handlers for GET and POST /decode. Consent strings longer than
// maxConsentLength are rejected before decoding.
func NewDecodeEndpoint(maxConsentLength int, metricsEngine metrics.MetricsEngine) *DecodeEndpoint {
	return &DecodeEndpoint{
		maxConsentLength: maxConsentLength,
		metricsEngine:    metricsEngine,
		parse:            vendorconsent.ParseString,
	}
}

// Get decodes the consent query parameter.
func (e *DecodeEndpoint) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	e.decode(w, r.URL.Query().Get("consent"))
}

// Post decodes the consent field of a JSON request body.
func (e *DecodeEndpoint) Post(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(io.LimitReader(r.Body, int64(e.maxConsentLength)+maxEnvelopeBytes))
	if err != nil {
		e.reject(w, &errortypes.BadInput{Message: fmt.Sprintf("failed to read the request body: %v", err)}, metrics.TCFVersionUnknown)
		return
	}

	consent, err := jsonparser.GetString(body, "consent")
	if err != nil {
		e.reject(w, &errortypes.BadInput{Message: `the request body must be a JSON object with a "consent" string`}, metrics.TCFVersionUnknown)
		return
	}
	e.decode(w, consent)
}

func (e *DecodeEndpoint) decode(w http.ResponseWriter, consent string) {
	version := metrics.TCFVersionOf(consent)
	if consent == "" {
		e.reject(w, &errortypes.BadInput{Message: "a consent string is required"}, version)
		return
	}
	if len(consent) > e.maxConsentLength {
		e.reject(w, &errortypes.BadInput{
			Message: fmt.Sprintf("the consent string has %d characters, more than the limit of %d", len(consent), e.maxConsentLength),
		}, version)
		return
	}

	start := time.Now()
	parsed, err := e.parse(consent)
	labels := metrics.DecodeLabels{
		Version: version,
		Status:  metrics.DecodeStatusOf(err),
	}
	e.metricsEngine.RecordDecode(labels)
	e.metricsEngine.RecordDecodeTime(labels, time.Since(start))

	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: errortypes.ReadCode(err)})
		return
	}
	writeJSON(w, http.StatusOK, decodeResponse{Version: parsed.Version(), Consent: parsed})
}

func (e *DecodeEndpoint) reject(w http.ResponseWriter, err error, version metrics.TCFVersion) {
	e.metricsEngine.RecordDecode(metrics.DecodeLabels{
		Version: version,
		Status:  metrics.DecodeStatusOf(err),
	})
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: errortypes.ReadCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	jsonOutput, err := json.Marshal(body)
	if err != nil {
		glog.Errorf("/decode Critical error when trying to marshal the response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonOutput)
}
