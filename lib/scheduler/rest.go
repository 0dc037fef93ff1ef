package scheduler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/uol/gobol/rip"
	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/constants"
)

// StatusAPI - serves the bookkeeping rows as JSON, the same data the watch
// screen shows
type StatusAPI struct {
	backend Backend
	address string
	server  *http.Server
	logger  *logh.ContextualLogger
}

// NewStatusAPI - creates the status endpoint
func NewStatusAPI(backend Backend, address string) *StatusAPI {

	return &StatusAPI{
		backend: backend,
		address: address,
		logger:  logh.CreateContextualLogger(constants.StringsPKG, "scheduler"),
	}
}

// Start asynchronously the handler of the API
func (api *StatusAPI) Start() {

	router := rip.NewCustomRouter()
	router.GET("/api/repair/status", api.status)

	// built before the goroutine starts so Stop always sees it
	api.server = &http.Server{
		Addr:         api.address,
		Handler:      cors.AllowAll().Handler(router),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go api.asyncStart()
}

func (api *StatusAPI) asyncStart() {

	if logh.InfoEnabled {
		api.logger.Info().Msgf("status endpoint listening on %s", api.address)
	}

	err := api.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		if logh.ErrorEnabled {
			api.logger.Error().Err(err).Msg("error listening on the status endpoint")
		}
	}
}

// Stop - stops the status endpoint
func (api *StatusAPI) Stop() {

	if api.server != nil {
		api.server.Shutdown(context.Background())
	}
}

func (api *StatusAPI) status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {

	statuses, gerr := api.backend.AllStatuses()
	if gerr != nil {
		rip.Fail(w, gerr)
		return
	}

	if statuses == nil {
		statuses = []NodeStatus{}
	}

	rip.SuccessJSON(w, http.StatusOK, statuses)
}
