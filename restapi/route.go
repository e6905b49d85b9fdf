/*
Package restapi serves probable duplicate queries against a loaded sketch.

The sketch is read only once loaded, so requests are answered concurrently
without locking.
*/
package restapi

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/sketch"
)

type ServerOptions struct {
	// Default threshold, overridable per request.
	Threshold uint8
	// Default line delimiter, overridable per request.
	ZeroTerminated bool
	// Largest accepted request body.
	RequestMaxBytes int64
}

type Server struct {
	Router *gin.Engine
	sk     *sketch.Sketch
	opts   ServerOptions
}

// response to hitting '/' on the server
func GetRoot(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/plain")
	_, err := c.Writer.Write([]byte("dupsketch"))
	if err != nil {
		st.Logger.Err(err).Msg("get root")
	}
}

// Basic middleware to log errors.
func ErrorLoggerMiddleware(c *gin.Context) {
	if c == nil {
		st.Logger.Error().Msg("gin error, couldn't provide error info as context was nil.")
		return
	}
	c.Next()

	for _, err := range c.Errors {
		if c.Request == nil || c.Request.URL == nil {
			st.Logger.Error().Err(err).Msg("gin error, limited detail was Request or Request URL was nil.")
		} else {
			st.Logger.Error().Err(err).Msgf("gin error on route %s %s with query params %v", c.Request.Method, c.Request.URL, c.Request.URL.Query())
		}
	}
}

func NewServer(sk *sketch.Sketch, opts ServerOptions) *Server {
	gin.SetMode(gin.ReleaseMode) // don't print route list on start

	router := gin.New()
	router.Use(ErrorLoggerMiddleware, gin.Recovery())
	s := &Server{router, sk, opts}

	// params and fill of the loaded sketch
	lpath := "/api/v1/sketch"
	router.GET(lpath, MetricHandler(lpath, s.GetSketch))
	// estimated count of every line in the body
	lpath = "/api/v1/estimate"
	router.POST(lpath, MetricHandler(lpath, s.PostEstimate))
	// lines of the body that are probable duplicates
	lpath = "/api/v1/filter"
	router.POST(lpath, MetricHandler(lpath, s.PostFilter))

	// base response
	router.GET("/", GetRoot)

	pprof.Register(router, "debug/pprof")

	// prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}
