package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintJob_IsTerminal(t *testing.T) {
	tests := []struct {
		status   PrintJobStatus
		terminal bool
	}{
		{PrintJobPending, false},
		{PrintJobPrinting, false},
		{PrintJobCompleted, true},
		{PrintJobFailed, true},
	}
	for _, tt := range tests {
		j := &PrintJob{Status: tt.status}
		assert.Equal(t, tt.terminal, j.IsTerminal(), "status %s", tt.status)
	}
}
