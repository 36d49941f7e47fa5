package bus

import (
	"github.com/ThreeDotsLabs/watermill"
	log "github.com/sirupsen/logrus"
)

// logrusAdapter routes watermill's internal logging through logrus.
type logrusAdapter struct {
	fields watermill.LogFields
}

var _ watermill.LoggerAdapter = (*logrusAdapter)(nil)

func newLogrusAdapter() watermill.LoggerAdapter {
	return &logrusAdapter{}
}

func (l *logrusAdapter) entry(fields watermill.LogFields) *log.Entry {
	return log.WithFields(log.Fields(l.fields.Add(fields)))
}

func (l *logrusAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.entry(fields).WithError(err).Error(msg)
}

func (l *logrusAdapter) Info(msg string, fields watermill.LogFields) {
	l.entry(fields).Info(msg)
}

func (l *logrusAdapter) Debug(msg string, fields watermill.LogFields) {
	l.entry(fields).Debug(msg)
}

func (l *logrusAdapter) Trace(msg string, fields watermill.LogFields) {
	l.entry(fields).Trace(msg)
}

func (l *logrusAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &logrusAdapter{fields: l.fields.Add(fields)}
}
