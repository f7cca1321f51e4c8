package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisitStatusCanTransition(t *testing.T) {
	cases := []struct {
		from    VisitStatus
		to      VisitStatus
		allowed bool
	}{
		{VisitStatusTriage, VisitStatusConsultation, true},
		{VisitStatusTriage, VisitStatusLab, false},
		{VisitStatusTriage, VisitStatusPharmacy, false},
		{VisitStatusTriage, VisitStatusCompleted, false},
		{VisitStatusConsultation, VisitStatusLab, true},
		{VisitStatusConsultation, VisitStatusPharmacy, true},
		{VisitStatusConsultation, VisitStatusCompleted, true},
		{VisitStatusConsultation, VisitStatusTriage, false},
		{VisitStatusLab, VisitStatusPharmacy, true},
		{VisitStatusLab, VisitStatusConsultation, false},
		{VisitStatusLab, VisitStatusCompleted, false},
		{VisitStatusPharmacy, VisitStatusCompleted, true},
		{VisitStatusPharmacy, VisitStatusLab, false},
		{VisitStatusCompleted, VisitStatusTriage, false},
		{VisitStatusCompleted, VisitStatusConsultation, false},
		{VisitStatusCompleted, VisitStatusPharmacy, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestVisitStatusTerminal(t *testing.T) {
	assert.True(t, VisitStatusCompleted.Terminal())
	assert.False(t, VisitStatusTriage.Terminal())
	assert.False(t, VisitStatusPharmacy.Terminal())
}

func TestNextAfterConsultation(t *testing.T) {
	// Lab orders win over prescriptions.
	assert.Equal(t, VisitStatusLab, NextAfterConsultation(2, 3))
	assert.Equal(t, VisitStatusLab, NextAfterConsultation(1, 0))
	assert.Equal(t, VisitStatusPharmacy, NextAfterConsultation(0, 1))
	assert.Equal(t, VisitStatusCompleted, NextAfterConsultation(0, 0))
}

func TestNextAfterLab(t *testing.T) {
	// Lab always forwards to pharmacy, even with nothing to dispense.
	assert.Equal(t, VisitStatusPharmacy, NextAfterLab())
}
