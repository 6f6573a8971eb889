package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chamanbahar/cbm-sales/internal/app"
	_ "github.com/chamanbahar/cbm-sales/internal/testing/guard"
)

func TestWorkerSkipsStartupInTestMode(t *testing.T) {
	app.RefreshTestMode()
	assert.True(t, app.InTestMode())
	assert.NotPanics(t, main)
}
