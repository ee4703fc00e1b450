package aspects

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
)

// RequestTimeoutHeader lets a caller ask for a tighter bound than the host default, in milliseconds.
const RequestTimeoutHeader = "X-Request-Timeout-Ms"

// RequestTimeout bounds the context handed to f by timeout, or by the caller's RequestTimeoutHeader when that is
// shorter. A zero timeout only applies the caller's bound.
func RequestTimeout(f httprouter.Handle, timeout time.Duration) httprouter.Handle {

	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {

		bound := timeout
		if requested := r.Header.Get(RequestTimeoutHeader); requested != "" {
			requestedMS, err := strconv.Atoi(requested)

			//Return HTTP 400 if the timeout header is not a number of milliseconds
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			//Return HTTP 408 if the caller has no time left to give
			if requestedMS <= 0 {
				w.WriteHeader(http.StatusRequestTimeout)
				return
			}

			if requestedBound := time.Duration(requestedMS) * time.Millisecond; bound == 0 || requestedBound < bound {
				bound = requestedBound
			}
		}

		//No bound configured or requested - process request as usual
		if bound == 0 {
			f(w, r, params)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), bound)
		defer cancel()
		f(w, r.WithContext(ctx), params)
	}

}
