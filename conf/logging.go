package conf

import (
	"os"

	"github.com/sirupsen/logrus"
)

type LoggingConfig struct {
	Level  string            `json:"log_level"`
	File   string            `json:"log_file"`
	Fields map[string]string `json:"fields"`
}

func ConfigureLogging(config *LoggingConfig) error {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	// use a file if you want
	if config.File != "" {
		f, err := os.OpenFile(config.File, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0664)
		if err != nil {
			return err
		}
		logrus.SetOutput(f)
		logrus.Infof("Set output file to %s", config.File)
	}

	if config.Level != "" {
		level, err := logrus.ParseLevel(config.Level)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		logrus.Debug("Set log level to: " + logrus.GetLevel().String())
	}

	if len(config.Fields) > 0 {
		hook := fieldsHook{}
		for k, v := range config.Fields {
			hook[k] = v
		}
		logrus.AddHook(hook)
	}

	return nil
}

// fieldsHook stamps static fields on every entry
type fieldsHook logrus.Fields

func (h fieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h fieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}
