package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunVersion(t *testing.T) {
	assert.NoError(t, run([]string{"version"}))
}

func TestRunReportMissingEvents(t *testing.T) {
	assert.Error(t, run([]string{"report"}))
}
