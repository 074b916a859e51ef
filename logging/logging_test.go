package logging

import (
	"testing"

	"github.com/delbyte/solana-news-analysis/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	logger := New(config.LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger = New(config.LogConfig{Level: "bogus", Format: "text"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestGormLogger(t *testing.T) {
	assert.NotNil(t, Gorm(New(config.LogConfig{Level: "warn"})))
}
