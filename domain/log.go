package domain

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Log 模块默认使用的日志对象, 各模块可通过配置项注入自己的日志对象
var Log = logrus.New()

// LogOption 日志配置项
type LogOption struct {
	Level      string `desc:"日志等级"`
	File       string `desc:"日志文件, 为空时只输出到终端"`
	MaxSize    int    `desc:"单个日志文件大小(MB)"`
	MaxBackups int    `desc:"保留的旧日志文件数量"`
}

// CreateLogger 根据配置项创建日志对象, 文件输出由lumberjack负责切割
func CreateLogger(opt *LogOption) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	level, err := logrus.ParseLevel(opt.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	var out io.Writer = os.Stderr
	if opt.File != "" {
		if err := os.MkdirAll(filepath.Dir(opt.File), 0o755); err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   opt.File,
			MaxSize:    max(1, opt.MaxSize),
			MaxBackups: max(0, opt.MaxBackups),
		})
	}
	l.SetOutput(out)
	return l, nil
}

func loggerOr(l *logrus.Logger) *logrus.Logger {
	if l != nil {
		return l
	}
	return Log
}
