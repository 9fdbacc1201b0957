package aspects

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/prebid/tcstring/config"
)

// QueuedRequestTimeout refuses requests that waited in a proxy queue for longer than the proxy allows.
// The time spent and the allowed time are read, in seconds, from the configured headers.
func QueuedRequestTimeout(f httprouter.Handle, headers config.RequestTimeoutHeaders) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		timeInQueue := r.Header.Get(headers.RequestTimeInQueue)
		timeout := r.Header.Get(headers.RequestTimeoutInQueue)

		// Requests that did not come through the proxy are served as usual.
		if timeInQueue == "" || timeout == "" {
			f(w, r, params)
			return
		}

		waited, waitedErr := strconv.ParseFloat(timeInQueue, 64)
		allowed, allowedErr := strconv.ParseFloat(timeout, 64)
		if waitedErr != nil || allowedErr != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Request timeout headers are not numbers"))
			return
		}

		if waited >= allowed {
			w.WriteHeader(http.StatusRequestTimeout)
			w.Write([]byte("Queued request processing time exceeded maximum"))
			return
		}

		f(w, r, params)
	}
}
