package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", 587, "user", "pass", "no-reply@example.com")

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.NoError(t, m.Send(context.Background(), "user@example.com", "Password reset code", "Your code is 123456"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"user@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Password reset code\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "\r\n\r\nYour code is 123456"))
}

func TestSMTPMailer_Errors(t *testing.T) {
	m := NewSMTPMailer("localhost", 25, "", "", "a@b.c")
	assert.Nil(t, m.auth)
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }

	assert.ErrorContains(t, m.Send(context.Background(), "x@y.z", "s", "b"), "refused")
	assert.Error(t, m.Send(context.Background(), "x@y.z\r\nBcc: evil@y.z", "s", "b"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, "x@y.z", "s", "b"), context.Canceled)
}

func TestBuildMessage(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := string(buildMessage("from@x", "to@x", "subj", "hello", at))
	assert.Contains(t, msg, "From: from@x\r\nTo: to@x\r\nSubject: subj\r\n")
	assert.Contains(t, msg, "Date: Sun, 01 Mar 2026 12:00:00 +0000\r\n")
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	require.NoError(t, NewLogMailer(zap.New(core), false).Send(context.Background(), "a@b.c", "subj", "secret 123456"))
	require.NoError(t, NewLogMailer(zap.New(core), true).Send(context.Background(), "a@b.c", "subj", "secret 123456"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "body")
	assert.Equal(t, "secret 123456", entries[1].ContextMap()["body"])
}
