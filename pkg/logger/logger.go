package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

func Init() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("BOOKHUB_LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

var Log = Init()
