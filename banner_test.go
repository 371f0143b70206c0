// banner_test.go: Tests for the startup banner
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBanner(t *testing.T) {
	var out bytes.Buffer
	app := testAppContext(EnvironmentProduction, Interceptions{})

	PrintBanner(&out, "order service", "v1.2.0", app)

	text := out.String()
	assert.Contains(t, text, "#####################################")
	assert.Contains(t, text, "Order Service v1.2.0")
	assert.Contains(t, text, "environment: Production")
	assert.Contains(t, text, "listening on 127.0.0.1:5000")
}

func TestPrintBanner_WithoutConfig(t *testing.T) {
	var out bytes.Buffer

	PrintBanner(&out, "worker", "dev", NewContext())

	assert.Contains(t, out.String(), "Worker dev")
	assert.NotContains(t, out.String(), "listening on")
}
