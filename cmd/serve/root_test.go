package serve

import (
	"bytes"
	"errors"
	"github.com/ValentinKolb/oneshot/lib/outcome"
	"github.com/stretchr/testify/assert"
	"os"
	"syscall"
	"testing"
)

func TestReportExitAfterInterrupt(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := reportExit(&stdout, &stderr, true, nil, "0.0.0.0:8080")

	assert.NoError(t, err)
	assert.Equal(t, "\nServer shutdown requested.\nServer shut down cleanly.\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestReportExitBindError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	bindErr := outcome.NewError(outcome.BindError, os.NewSyscallError("bind", syscall.EADDRINUSE))

	err := reportExit(&stdout, &stderr, false, bindErr, "0.0.0.0:8080")

	assert.ErrorIs(t, err, syscall.EADDRINUSE)
	assert.Contains(t, stderr.String(), "FATAL ERROR during startup: bind: address already in use")
	assert.Contains(t, stderr.String(), "Check if 0.0.0.0:8080 is already in use")
	assert.Empty(t, stdout.String())
}

func TestReportExitAcceptError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	acceptErr := outcome.NewError(outcome.AcceptError, errors.New("too many open files"))

	err := reportExit(&stdout, &stderr, false, acceptErr, "0.0.0.0:8080")

	assert.Equal(t, acceptErr, err)
	assert.NotContains(t, stdout.String(), "shut down cleanly")
}
