package restapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/lines"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/modes"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/prom"
	rh "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/restapi/restapi_handlers"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/sketch"
)

type EstimateResponse struct {
	Lines      int   `json:"lines"`
	Duplicates int   `json:"duplicates"`
	Threshold  uint8 `json:"threshold"`
	// Estimates are in body order. Ints so they do not encode as base64.
	Estimates []int `json:"estimates"`
}

// queryOptions reads the threshold and delimiter overrides of a request.
func (s *Server) queryOptions(c *gin.Context) (modes.FilterOptions, error) {
	opts := modes.FilterOptions{Threshold: s.opts.Threshold, Delimiter: lines.Delimiter(s.opts.ZeroTerminated)}
	if raw, ok := c.GetQuery("threshold"); ok {
		t, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			return opts, err
		}
		opts.Threshold = uint8(t)
	}
	if opts.Threshold == 0 {
		return opts, sketch.ErrBadThreshold
	}
	if raw, ok := c.GetQuery("zero_terminated"); ok {
		z, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, err
		}
		opts.Delimiter = lines.Delimiter(z)
	}
	return opts, nil
}

func (s *Server) body(c *gin.Context) {
	if s.opts.RequestMaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.RequestMaxBytes)
	}
}

func (s *Server) GetSketch(c *gin.Context) {
	opts, err := s.queryOptions(c)
	if err != nil {
		rh.JSONError(c, http.StatusBadRequest, "bad query", err)
		return
	}
	c.JSON(http.StatusOK, s.sk.Stats(opts.Threshold))
}

func (s *Server) PostEstimate(c *gin.Context) {
	opts, err := s.queryOptions(c)
	if err != nil {
		rh.JSONError(c, http.StatusBadRequest, "bad query", err)
		return
	}
	s.body(c)
	resp := EstimateResponse{Threshold: opts.Threshold, Estimates: []int{}}
	sp := lines.NewSplitter(c.Request.Body, opts.Delimiter)
	for sp.Next() {
		est := s.sk.Estimate(sp.Line())
		if est >= opts.Threshold {
			resp.Duplicates++
		}
		resp.Estimates = append(resp.Estimates, int(est))
	}
	if err := sp.Err(); err != nil {
		rh.JSONError(c, requestErrorCode(err), "could not read lines", err)
		return
	}
	resp.Lines = len(resp.Estimates)
	prom.LinesQueried.Add(float64(resp.Lines))
	c.JSON(http.StatusOK, resp)
}

// PostFilter streams back the probable duplicates of the body.
func (s *Server) PostFilter(c *gin.Context) {
	opts, err := s.queryOptions(c)
	if err != nil {
		rh.JSONError(c, http.StatusBadRequest, "bad query", err)
		return
	}
	s.body(c)
	c.Writer.Header().Set("Content-Type", "application/octet-stream")
	stats, err := modes.Filter(s.sk, c.Request.Body, c.Writer, opts)
	prom.LinesQueried.Add(float64(stats.Lines))
	if err != nil {
		if !c.Writer.Written() {
			rh.JSONError(c, requestErrorCode(err), "could not filter lines", err)
			return
		}
		// part of the body was already sent
		c.Error(err)
	}
}

func requestErrorCode(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
