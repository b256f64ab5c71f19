package mailer

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/procureflow/procureflow-backend/pkg/config"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
)

func TestSMTPSenderTimesOutOnSilentRelay(t *testing.T) {
	// A relay that accepts the connection but never sends the greeting.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		<-stop
	}()

	sender, err := NewSMTPSender(config.SMTPConfig{
		Host:    "127.0.0.1",
		Port:    ln.Addr().(*net.TCPAddr).Port,
		From:    "RFP System <rfp@procurement.com>",
		Timeout: 200 * time.Millisecond,
	}, testLogger())
	require.NoError(t, err)

	vendor := models.Vendor{Name: "Acme", Email: "sales@acme.test"}
	start := time.Now()
	_, err = sender.SendRFP(t.Context(), vendor, sampleRFP())
	elapsed := time.Since(start)

	require.Error(t, err)
	require.Less(t, elapsed, 3*time.Second, "send should fail at the deadline, not hang")
}

func TestSMTPSenderDialFailureSurfaced(t *testing.T) {
	// Grab a free port and close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	sender, err := NewSMTPSender(config.SMTPConfig{
		Host:    "127.0.0.1",
		Port:    port,
		From:    "rfp@procurement.com",
		Timeout: 200 * time.Millisecond,
	}, testLogger())
	require.NoError(t, err)

	vendor := models.Vendor{Name: "Acme", Email: "sales@acme.test"}
	_, err = sender.SendRFP(t.Context(), vendor, sampleRFP())
	require.Error(t, err)
}
