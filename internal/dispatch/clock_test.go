package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateInUsesStudyZoneNotMachineZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// 05:30 UTC on March 1st is still Feb 29th in Chicago (23:30 CST).
	instant := time.Date(2024, 3, 1, 5, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-29", DateIn(instant, chicago))

	// Same instant expressed in another zone gives the same answer.
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", DateIn(instant.In(tokyo), chicago))
}

func TestDateInHandlesDSTTransition(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// 2024-03-10 07:30 UTC is 01:30 CST, just before the spring-forward gap.
	instant := time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-10", DateIn(instant, chicago))
}
