package notify_test

import (
	"context"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"membership-service/internal/config"
	"membership-service/internal/logger"
	"membership-service/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receivedMail struct {
	from string
	to   string
	data string
}

// startFakeSMTP accepts a single session and reports what was delivered.
func startFakeSMTP(t *testing.T) (host string, port int, mails <-chan receivedMail) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	out := make(chan receivedMail, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tp := textproto.NewConn(conn)
		var mail receivedMail
		_ = tp.PrintfLine("220 localhost ESMTP test")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				_ = tp.PrintfLine("250 localhost")
			case strings.HasPrefix(cmd, "MAIL FROM:"):
				mail.from = strings.Trim(line[len("MAIL FROM:"):], "<> ")
				_ = tp.PrintfLine("250 OK")
			case strings.HasPrefix(cmd, "RCPT TO:"):
				mail.to = strings.Trim(line[len("RCPT TO:"):], "<> ")
				_ = tp.PrintfLine("250 OK")
			case cmd == "DATA":
				_ = tp.PrintfLine("354 End data with <CR><LF>.<CR><LF>")
				data, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				mail.data = string(data)
				_ = tp.PrintfLine("250 OK")
			case cmd == "QUIT":
				_ = tp.PrintfLine("221 Bye")
				out <- mail
				return
			default:
				_ = tp.PrintfLine("502 Command not implemented")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port, out
}

func TestSMTPNotifier(t *testing.T) {
	t.Run("DeliversPlainTextMail", func(t *testing.T) {
		host, port, mails := startFakeSMTP(t)

		n, err := notify.NewSMTPNotifier(config.SMTPConfig{
			Host: host,
			Port: port,
			From: "site@example.org",
		}, logger.Discard())
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = n.Notify(ctx, "admin@example.org", "New contact message: Hi\r\nBcc: x@evil", "Line one\nLine two")
		require.NoError(t, err)

		select {
		case mail := <-mails:
			assert.Equal(t, "site@example.org", mail.from)
			assert.Equal(t, "admin@example.org", mail.to)
			assert.Contains(t, mail.data, "Subject: New contact message: Hi  Bcc: x@evil\n")
			assert.Contains(t, mail.data, "Line one\nLine two")
			assert.NotContains(t, mail.data, "\nBcc:")
		case <-time.After(5 * time.Second):
			t.Fatal("no mail received")
		}
	})

	t.Run("CRLFBodyNotDoubled", func(t *testing.T) {
		host, port, mails := startFakeSMTP(t)

		n, err := notify.NewSMTPNotifier(config.SMTPConfig{Host: host, Port: port, From: "site@example.org"}, logger.Discard())
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = n.Notify(ctx, "admin@example.org", "New member", "Name: Amare\r\nEmail: amare@example.com\nGoals: learn")
		require.NoError(t, err)

		select {
		case mail := <-mails:
			assert.Contains(t, mail.data, "Name: Amare\nEmail: amare@example.com\nGoals: learn")
			assert.NotContains(t, mail.data, "\r")
		case <-time.After(5 * time.Second):
			t.Fatal("no mail received")
		}
	})

	t.Run("MissingRecipient", func(t *testing.T) {
		n, err := notify.NewSMTPNotifier(config.SMTPConfig{Host: "127.0.0.1", Port: 25}, logger.Discard())
		require.NoError(t, err)

		err = n.Notify(context.Background(), "", "subject", "body")
		assert.ErrorIs(t, err, notify.ErrNoRecipient)
	})

	t.Run("UnreachableRelay", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := ln.Addr().(*net.TCPAddr).Port
		require.NoError(t, ln.Close())

		n, err := notify.NewSMTPNotifier(config.SMTPConfig{Host: "127.0.0.1", Port: port}, logger.Discard())
		require.NoError(t, err)

		err = n.Notify(context.Background(), "admin@example.org", "subject", "body")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connect")
	})
}
