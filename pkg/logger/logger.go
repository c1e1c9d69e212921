package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New создает JSON-логгер; некорректный уровень заменяется на info
func New(logLevel string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg: "message",
		},
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
		log.WithField("value", logLevel).Warn("Unknown LOG_LEVEL, falling back to info")
	}
	log.SetLevel(level)
	return log
}
