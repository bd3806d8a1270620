// Package logger configures structured JSON logging shared by every service
// component. Entries carry the service and component names so logs from the
// single binary remain attributable.
package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	hostname, _ := os.Hostname()
	log.AddHook(&defaultFields{hostname: hostname})
	return log
}

// WithComponent tags entries with the owning component, the way repository
// and service layers identify themselves.
func WithComponent(log *logrus.Logger, component string) *logrus.Entry {
	return log.WithField("component", component)
}

type defaultFields struct {
	hostname string
}

func (h *defaultFields) Levels() []logrus.Level { return logrus.AllLevels }

func (h *defaultFields) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["service"]; !ok {
		e.Data["service"] = "tableside"
	}
	e.Data["hostname"] = h.hostname
	return nil
}
