package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestConfigureLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	ConfigureLogging("debug")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	ConfigureLogging("chatty")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}
