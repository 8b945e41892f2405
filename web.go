package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Seednode/knockbox/session"
	"github.com/julienschmidt/httprouter"
)

const (
	logDate string        = `2006-01-02T15:04:05.000-07:00`
	timeout time.Duration = 10 * time.Second
)

// status is what the event loop publishes after every change. Handlers only
// ever read the latest one.
type status struct {
	Player    string        `json:"player"`
	Joined    bool          `json:"joined"`
	Connected bool          `json:"connected"`
	DrawLock  bool          `json:"draw_lock"`
	State     session.State `json:"state"`
	Board     string        `json:"-"`
	Updated   time.Time     `json:"updated"`
}

type statusBoard struct {
	current atomic.Pointer[status]
}

func (b *statusBoard) publish(s *status) {
	s.Updated = time.Now()
	b.current.Store(s)
}

func (b *statusBoard) load() *status {
	if s := b.current.Load(); s != nil {
		return s
	}

	return &status{}
}

func securityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(), fullscreen=(), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("X-Real-IP"); ip != "" && net.ParseIP(ip) != nil {
		host = ip
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

// servePlain writes body as text and logs it under name.
func servePlain(cfg *Config, errs chan<- error, name string, body func() string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(w)
		w.WriteHeader(http.StatusOK)

		written, err := io.WriteString(w, body())
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: %s (%s) to %s in %s",
			name,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return servePlain(cfg, errs, "Health check", func() string {
		return "Ok\n"
	})
}

func serveVersion(cfg *Config, errs chan<- error) httprouter.Handle {
	return servePlain(cfg, errs, "Version page", func() string {
		return "knockbox v" + releaseVersion + "\n"
	})
}

func serveBoard(cfg *Config, board *statusBoard, errs chan<- error) httprouter.Handle {
	return servePlain(cfg, errs, "Board", func() string {
		s := board.load()
		if s.Board == "" {
			return "Waiting for the first game state.\n"
		}

		return s.Board + "\n"
	})
}

func serveState(cfg *Config, board *statusBoard, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		body, err := json.Marshal(board.load())
		if err != nil {
			errs <- err

			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		securityHeaders(w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write(body)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: State (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func newRouter(cfg *Config, board *statusBoard, errs chan<- error) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(w)
		w.WriteHeader(http.StatusInternalServerError)

		_, _ = io.WriteString(w, newPage("Server Error", "An error has occurred. Please try again."))
	}

	mux.GET("/board", serveBoard(cfg, board, errs))

	mux.GET("/healthz", serveHealthCheck(cfg, errs))

	mux.GET("/qr", serveQR(cfg, errs))

	mux.GET("/state", serveState(cfg, board, errs))

	mux.GET("/version", serveVersion(cfg, errs))

	if cfg.profile {
		registerProfileHandlers(mux)
	}

	return mux
}

// ServeStatus runs the local status server until ctx is done.
func ServeStatus(ctx context.Context, cfg *Config, board *statusBoard) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	errs := make(chan error, 64)
	go logErrors(cfg, errs)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.statusBind, strconv.Itoa(cfg.statusPort)),
		Handler:           newRouter(cfg, board, errs),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	failed := make(chan error, 1)

	go func() {
		logf(cfg, "SERVE: Listening on http://%s/", srv.Addr)

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-failed:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// A handler that outlived the timeout may still report on errs.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	close(errs)

	return nil
}
