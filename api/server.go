package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aavahealth/migraine-api/ml"
	"github.com/aavahealth/migraine-api/risk"
	"github.com/aavahealth/migraine-api/schema"
	"github.com/aavahealth/migraine-api/store"
	"github.com/aavahealth/migraine-api/weather"
)

// Server is the HTTP surface of the prediction service. All of its
// collaborators are injected at construction; handlers hold no state of
// their own.
type Server struct {
	mongoStore store.MigraineStore
	trainer    *ml.Trainer
	engine     *risk.Engine
	weather    weather.Source
	traceMode  bool
}

func NewServer(mongoStore store.MigraineStore, trainer *ml.Trainer, engine *risk.Engine, weatherSource weather.Source, traceMode bool) *Server {
	return &Server{
		mongoStore: mongoStore,
		trainer:    trainer,
		engine:     engine,
		weather:    weatherSource,
		traceMode:  traceMode,
	}
}

func (s *Server) Run(addr string) error {
	return s.setupRouter().Run(addr)
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-User-Id"},
	}))
	r.Use(s.DumpRequest)

	r.GET("/healthz", s.healthz)

	authed := r.Group("/")
	authed.Use(s.recognizeRequester())
	{
		authed.POST("/reports/:stream", s.submitReport)
		authed.POST("/risk/:stream", s.predictStream)
		authed.GET("/risk", s.predictFused)
		authed.POST("/models/:stream/train", s.trainUserModel)
	}

	// a base retrain sweeps the whole corpus; it is operator-triggered
	// and not scoped to a requester
	r.POST("/models/:stream/train-base", s.trainBaseModel)

	return r
}

// recognizeRequester binds the authenticated subject forwarded by the
// gateway. Authentication itself happens upstream.
func (s *Server) recognizeRequester() gin.HandlerFunc {
	return func(c *gin.Context) {
		requester := c.GetHeader("X-User-Id")
		if requester == "" {
			abortWithEncoding(c, http.StatusUnauthorized, errorInvalidParameters)
			return
		}
		c.Set("requester", requester)
		c.Next()
	}
}

func (s *Server) healthz(c *gin.Context) {
	if err := s.mongoStore.Ping(); err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseStream maps the :stream route parameter onto the stream type.
func parseStream(c *gin.Context) (schema.Stream, bool) {
	stream := schema.Stream(c.Param("stream"))
	if !stream.Valid() {
		abortWithEncoding(c, http.StatusBadRequest, errorUnknownStream)
		return "", false
	}
	return stream, true
}
