package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// log file rotation limits
const (
	logFileMaxSizeMB  = 50
	logFileMaxBackups = 3
	logFileMaxAgeDays = 14
)

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	// TODO: Make color configurable? Disabled so we don't have to deal with ANSI escape codes in our logoutput
	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("[ %s ]", i)
	}
	return output
}

func SetupLogger() {
	log.Logger = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
}

// AddFileOutput tees the global logger into a size-rotated log file. The
// file receives JSON lines so it can be machine-parsed later.
func AddFileOutput(path string) io.Closer {
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
	}
	writer := zerolog.MultiLevelWriter(consoleWriter(os.Stderr), file)
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	return file
}

func GetLogger() zerolog.Logger {
	return log.Logger
}
