package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pressly/chainstore"
	"github.com/pressly/lg"

	snapframe "github.com/hasimpk/snap-to-frame"
	"github.com/hasimpk/snap-to-frame/raster"
)

var (
	app     *Server
	respond = NewResponder()
)

type Server struct {
	Config      *Config
	Chainstore  chainstore.Store
	Fetcher     *Fetcher
	ImageEngine snapframe.Engine
	FrameBase   *snapframe.Frame

	renderSem chan struct{}
}

func New(conf *Config) *Server {
	app = &Server{Config: conf}
	return app
}

func (srv *Server) Configure() (err error) {
	if err := srv.Config.Apply(); err != nil {
		return err
	}

	srv.Chainstore, err = srv.Config.GetChainstore()
	if err != nil {
		return err
	}

	srv.FrameBase, err = srv.Config.GetFrameDefaults()
	if err != nil {
		return err
	}

	srv.Fetcher = NewFetcher()
	srv.Fetcher.MaxConcurrency = srv.Config.Limits.MaxFetchers

	if n := srv.Config.Limits.MaxRenderers; n > 0 {
		srv.renderSem = make(chan struct{}, n)
	}

	srv.ImageEngine = raster.Engine{}
	if err := srv.ImageEngine.Initialize(srv.Config.TmpDir); err != nil {
		return err
	}

	return nil
}

// Close signals to the server that it should deny new requests
// and finish up requests in progress.
func (srv *Server) Close() {
	lg.Info("closing server..")
}

// Shutdown will release other resources and halt the server.
func (srv *Server) Shutdown() {
	srv.ImageEngine.Terminate()
	srv.Chainstore.Close()
	lg.Info("server shutdown.")
}

func (srv *Server) NewRouter() http.Handler {
	cf := srv.Config

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(lg.RequestLogger(lg.DefaultLogger))
	r.Use(lg.PrintPanics)

	r.Use(middleware.ThrottleBacklog(cf.Limits.MaxRequests, cf.Limits.BacklogSize, cf.Limits.BacklogTimeout))
	r.Use(middleware.Timeout(cf.Limits.RequestTimeout))

	r.Use(middleware.Heartbeat("/ping"))

	if srv.Config.Profiler {
		r.Mount("/debug", Profiler())
	}

	r.Get("/", Index)
	r.Get("/info", GetImageInfo)

	r.Group(func(r chi.Router) {
		cors := cors.New(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300, // Maximum value not ignored by any of major browsers
		})
		r.Use(cors.Handler)

		r.With(trackRoute("fetch")).Get("/fetch", FetchRender)
	})

	r.With(trackRoute("render")).Post("/render", RenderUpload)
	r.With(trackRoute("batch")).Post("/batch", RenderBatch)

	return r
}

func Index(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(200)
	w.Write([]byte(`.`))
}
