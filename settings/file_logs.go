package settings

import (
	"io"
	"log" // cannot use zerolog as log options not initialised
	"os"
	"path"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process logger. It never writes to stdout, which carries sketch and line data.
var Logger zerolog.Logger

// start a new rotating log file
func makeFileLogger(filename string) io.Writer {
	// lumberjack lets us rotate log files automatically
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    2, // megabytes
		MaxBackups: 3,
		MaxAge:     28,    //days
		Compress:   false, // disabled by default
	}
}

func setupLoggers(settings *DSSettings) {
	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		log.Printf("invalid log level %q, using info", settings.LogLevel)
		level = zerolog.InfoLevel
	}
	var out io.Writer = os.Stderr
	if settings.LogPath != "" {
		if err := os.MkdirAll(settings.LogPath, 0770); err != nil {
			log.Fatalf("The log path '%s' could not be created with error: %s", settings.LogPath, err.Error())
		}
		out = zerolog.MultiLevelWriter(os.Stderr, makeFileLogger(path.Join(settings.LogPath, "dupsketch.log")))
	}
	Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}
