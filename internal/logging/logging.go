package logging

import (
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
)

// echoのロガーと同じJSON形式でアプリのログを出す
const header = `{"time":"${time_rfc3339_nano}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`

// Newはprefix付きのロガーを作る
func New(prefix string, level string) *log.Logger {
	l := log.New(prefix)
	l.SetHeader(header)
	l.SetOutput(os.Stdout)
	l.SetLevel(ParseLevel(level))
	return l
}

// Discardはテスト用の何も出さないロガー
func Discard() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	l.SetLevel(log.OFF)
	return l
}

func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
