package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/modes"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/restapi"
	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/sketch"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/store"
)

func newServeCmd() *cobra.Command {
	var sketches []string
	threshold := st.Sketch.Threshold
	zeroTerminated := st.Sketch.ZeroTerminated
	listen := st.Settings.Server.ListenAddr
	c := &cobra.Command{
		Use:   "serve --sketch LOCATION",
		Short: "Answer probable duplicate queries over HTTP",
		Long: `Loads and merges the given sketches once, then serves:

  GET  /api/v1/sketch     params and fill of the loaded sketch
  POST /api/v1/estimate   estimated count of each line of the body
  POST /api/v1/filter     lines of the body that are probable duplicates
  GET  /metrics           prometheus metrics

The query endpoints accept ?threshold=N and ?zero_terminated=true.`,
		Example: `dupsketch serve -S s3://sketches/day1/combined.sketch --listen :8111
curl --data-binary @shard1.log localhost:8111/api/v1/filter`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if err := stdinOnce(sketches); err != nil {
				return err
			}
			if threshold == 0 {
				return sketch.ErrBadThreshold
			}
			ctx := c.Context()
			resolver := store.NewResolver(c.InOrStdin(), c.OutOrStdout())
			inputs := make([]modes.Input, 0, len(sketches))
			for _, loc := range sketches {
				r := &lazyReader{ctx: ctx, resolver: resolver, loc: loc}
				defer r.Close()
				inputs = append(inputs, modes.Input{Name: loc, R: r})
			}
			sk, err := modes.LoadSketch(inputs...)
			if err != nil {
				return err
			}

			srv := restapi.NewServer(sk, restapi.ServerOptions{
				Threshold:       threshold,
				ZeroTerminated:  zeroTerminated,
				RequestMaxBytes: int64(st.Settings.Server.RequestMaxBytes),
			})
			httpServer := &http.Server{Addr: listen, Handler: srv.Router, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()
			st.Logger.Info().Str("addr", listen).Stringer("params", sk.Params()).Msg("serving sketch")
			err = httpServer.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				st.Logger.Info().Msg("stopped serving")
				return nil
			}
			return err
		},
	}
	c.Flags().StringArrayVarP(&sketches, "sketch", "S", nil, "sketch location to serve, may be repeated")
	c.Flags().Uint8VarP(&threshold, "threshold", "t", threshold, "default minimum estimated count of a duplicate")
	c.Flags().BoolVarP(&zeroTerminated, "zero-terminated", "0", zeroTerminated, "request bodies are NUL separated by default")
	c.Flags().StringVar(&listen, "listen", listen, "address to listen on")
	c.MarkFlagRequired("sketch")
	return c
}
