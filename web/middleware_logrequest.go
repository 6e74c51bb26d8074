package web

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const RequestIdHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type LogRequestMiddleware struct {
	logger         zerolog.Logger
	trustedProxies []string
	next           http.Handler
}

func NewLogRequestMiddleware(logger zerolog.Logger, trustedProxies []string, next http.Handler) *LogRequestMiddleware {
	return &LogRequestMiddleware{
		logger:         logger,
		trustedProxies: trustedProxies,
		next:           next,
	}
}

func (mw *LogRequestMiddleware) getRemoteAddr(req *http.Request) string {
	remoteHost, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	trusted := false
	for _, trustedAddr := range mw.trustedProxies {
		if trustedAddr == remoteHost {
			trusted = true
			break
		}
	}
	if !trusted {
		return remoteHost
	}
	if realIP := req.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if xForwardedFor := req.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		splitted := strings.SplitN(xForwardedFor, ",", 2)
		return strings.TrimSpace(splitted[0])
	}
	return remoteHost
}

func (mw *LogRequestMiddleware) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	requestId := req.Header.Get(RequestIdHeader)
	if requestId == "" {
		requestId = uuid.New().String()
	}
	rw.Header().Set(RequestIdHeader, requestId)
	recorder := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
	start := time.Now()
	mw.next.ServeHTTP(recorder, req)
	mw.logger.Info().
		Str("request_id", requestId).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("remote", mw.getRemoteAddr(req)).
		Int("status", recorder.status).
		Dur("latency", time.Since(start)).
		Msg("completed handling request")
}
