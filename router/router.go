package router

import (
	"io"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/prebid/prebid-mobileads/bridge"
	"github.com/prebid/prebid-mobileads/bridge/instrumented"
	"github.com/prebid/prebid-mobileads/config"
	"github.com/prebid/prebid-mobileads/endpoints"
	"github.com/prebid/prebid-mobileads/events"
	metricsConf "github.com/prebid/prebid-mobileads/metrics/config"
	"github.com/prebid/prebid-mobileads/router/aspects"
	"github.com/prebid/prebid-mobileads/simulator"
	"github.com/prebid/prebid-mobileads/simulator/store"
)

type Router struct {
	*httprouter.Router
	MetricsEngine *metricsConf.DetailedMetricsEngine
	// Emitter carries every event the sandbox plays back.
	Emitter  *events.Emitter
	Shutdown func()
}

// New wires the sandbox bridge and serves it under /v1, next to /status.
func New(cfg *config.Configuration) (r *Router, err error) {
	r = &Router{
		Router:        httprouter.New(),
		MetricsEngine: metricsConf.NewMetricsEngine(cfg),
		Emitter:       events.NewEmitter(),
	}

	deviceStore, err := store.New(cfg.Store)
	if err != nil {
		return nil, err
	}
	glog.Infof("Keeping sandbox consent state in the %s store", cfg.Store.Type)

	stopAdEventMetrics := r.Emitter.SubscribeAll(func(e events.Event) {
		r.MetricsEngine.RecordAdEvent(e.Format, e.Type)
	})

	var native bridge.Bridge = simulator.New(cfg.Sandbox, deviceStore, r.Emitter)
	native = instrumented.New(native, r.MetricsEngine)

	requestTimeout := time.Duration(cfg.RequestTimeoutMS) * time.Millisecond
	endpoints.NewBridgeEndpoints(native).Register(r.Router, func(h httprouter.Handle) httprouter.Handle {
		return aspects.RequestTimeout(h, requestTimeout)
	})
	r.GET("/v1/events", endpoints.NewEventStreamEndpoint(r.Emitter, r.MetricsEngine))
	r.GET("/status", endpoints.NewStatusEndpoint(cfg.StatusResponse))

	r.Shutdown = func() {
		stopAdEventMetrics()
		if closer, ok := deviceStore.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				glog.Errorf("Failed to close the %s store: %v", cfg.Store.Type, err)
			}
		}
	}
	return r, nil
}

// Admin serves the version and profiling endpoints on the admin port.
func Admin(version, revision string, cfg *config.Configuration) *http.ServeMux {
	mux := http.NewServeMux()
	versionEndpoint := endpoints.NewVersionEndpoint(version, revision, cfg.Sandbox.SDKVersion, cfg.ExternalURL)
	mux.HandleFunc("/version", func(w http.ResponseWriter, req *http.Request) {
		versionEndpoint(w, req, nil)
	})
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

// SupportCORS lets browser based sandboxes call the bridge. Origins come from cors.allowed_origins; "*" allows any.
func SupportCORS(cfg config.CORS, handler http.Handler) http.Handler {
	options := cors.Options{
		AllowCredentials: cfg.AllowCredentials,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders:   []string{"Origin", "X-Requested-With", "Content-Type", "Accept", bridge.DeviceIDHeader, aspects.RequestTimeoutHeader},
	}
	if allowsAnyOrigin(cfg.AllowedOrigins) {
		options.AllowOriginFunc = func(string) bool {
			return true
		}
	} else {
		options.AllowedOrigins = cfg.AllowedOrigins
	}
	return cors.New(options).Handler(handler)
}

func allowsAnyOrigin(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
