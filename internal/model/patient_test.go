package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewMRNFormat(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		mrn := NewMRN(now)
		assert.True(t, ValidMRN(mrn), "generated %q", mrn)
		assert.Contains(t, mrn, "MRN-2025-")
	}
}

func TestValidMRN(t *testing.T) {
	assert.True(t, ValidMRN("MRN-2025-1042"))
	assert.False(t, ValidMRN("MRN-2025-104"))
	assert.False(t, ValidMRN("MRN-25-1042"))
	assert.False(t, ValidMRN("mrn-2025-1042"))
	assert.False(t, ValidMRN("MRN-2025-1042x"))
	assert.False(t, ValidMRN(""))
}
