package hook

import (
	"os"

	"github.com/sirupsen/logrus"
)

// StdoutLoggerHook mirrors every entry of the main logger to a plain stdout
// logger, so operators get readable output next to the structured stream.
type StdoutLoggerHook struct {
	logger *logrus.Logger
}

func NewStdoutLoggerHook(logger *logrus.Logger, formatter logrus.Formatter) *StdoutLoggerHook {
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(formatter)
	return &StdoutLoggerHook{logger: logger}
}

func (h *StdoutLoggerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *StdoutLoggerHook) Fire(entry *logrus.Entry) error {
	h.logger.WithFields(entry.Data).Log(entry.Level, entry.Message)
	return nil
}
