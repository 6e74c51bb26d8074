package web

import (
	"errors"
	"net/http"
	"subuk/devname/compute"
	"subuk/devname/config"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/unrolled/render"
	"golang.org/x/crypto/bcrypt"
)

var AppVersion string

type Environ struct {
	render  *render.Render
	logger  zerolog.Logger
	router  *mux.Router
	compute *compute.Service
	cfg     *config.WebConfig
}

func New(cfg *config.Config, logger zerolog.Logger, service *compute.Service) http.Handler {
	env := &Environ{
		cfg:     &cfg.Web,
		logger:  logger,
		compute: service,
		router:  mux.NewRouter(),
		render: render.New(render.Options{
			IndentJSON: true,
		}),
	}

	env.router.HandleFunc("/version/", env.Version).Name("version")
	env.router.HandleFunc("/instances/{id}/mapping/", env.authenticated(env.InstanceMapping)).Methods("GET").Name("instance-mapping")
	env.router.HandleFunc("/instances/{id}/device-names/", env.authenticated(env.DeviceNameAllocate)).Methods("POST").Name("device-name-allocate")
	env.router.HandleFunc("/instances/{id}/volumes/", env.authenticated(env.VolumeAttach)).Methods("POST").Name("volume-attach")
	env.router.HandleFunc("/instances/{id}/volumes/{device}/", env.authenticated(env.VolumeDetach)).Methods("DELETE").Name("volume-detach")

	return NewLogRequestMiddleware(logger, cfg.Web.TrustedProxies, env)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorStatus(err error) int {
	switch {
	default:
		return http.StatusInternalServerError
	case errors.Is(err, compute.ErrInvalidDevicePath):
		return http.StatusBadRequest
	case errors.Is(err, compute.ErrDevicePathInUse):
		return http.StatusConflict
	case errors.Is(err, compute.ErrNoAvailableDevice):
		return http.StatusInsufficientStorage
	case errors.Is(err, compute.ErrMissingRootDevice):
		return http.StatusUnprocessableEntity
	case errors.Is(err, compute.ErrInstanceNotFound), errors.Is(err, compute.ErrMappingNotFound):
		return http.StatusNotFound
	}
}

func (env *Environ) error(rw http.ResponseWriter, req *http.Request, err error, message string) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		env.logger.Warn().Int("status", status).Err(err).Str("path", req.URL.Path).Msg("request error occured")
	}
	if rerr := env.render.JSON(rw, status, errorResponse{Error: err.Error(), Message: message}); rerr != nil {
		http.Error(rw, "failed to render response", http.StatusInternalServerError)
	}
}

func (env *Environ) authenticated(handler http.HandlerFunc) http.HandlerFunc {
	if len(env.cfg.Users) == 0 {
		return handler
	}
	return func(rw http.ResponseWriter, req *http.Request) {
		username, password, ok := req.BasicAuth()
		if !ok || !env.checkPassword(username, password) {
			rw.Header().Set("WWW-Authenticate", `Basic realm="devname"`)
			http.Error(rw, "authentication required", http.StatusUnauthorized)
			return
		}
		handler(rw, req)
	}
}

func (env *Environ) checkPassword(userId string, password string) bool {
	for _, user := range env.cfg.Users {
		if user.Id != userId {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
			env.logger.Warn().Err(err).Str("id", userId).Msg("authentication failure")
			return false
		}
		return true
	}
	env.logger.Warn().Str("id", userId).Msg("user not found")
	return false
}

func (env *Environ) Version(rw http.ResponseWriter, req *http.Request) {
	env.render.JSON(rw, http.StatusOK, map[string]string{"version": AppVersion})
}

func (env *Environ) ServeHTTP(w http.ResponseWriter, request *http.Request) {
	env.router.ServeHTTP(w, request)
}
