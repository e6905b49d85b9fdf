package main

import (
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/cmd"
	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
)

func main() {
	// match GOMAXPROCS to the container cpu quota
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		st.Logger.Debug().Msgf(format, args...)
	}))
	defer undo()
	if err != nil {
		st.Logger.Warn().Err(err).Msg("could not set GOMAXPROCS")
	}
	cmd.Execute()
}
