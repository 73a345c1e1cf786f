package main

import (
	"testing"

	"decorbook/config"
	"decorbook/services/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewMailer(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	m, err := newMailer(&config.Config{}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notification.LogMailer{}, m)
	assert.Equal(t, 1, logs.FilterMessage("SMTP not configured; emails are only logged").Len())

	m, err = newMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 2525, MailFrom: "bookings@example.com"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notification.SMTPMailer{}, m)
}
