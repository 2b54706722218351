package security

import (
	"testing"
	"time"

	"learnspace/backend/config"
	"learnspace/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		MaxAttemptsPerMinute:           5,
		MaxAttemptsPerHour:             10,
		MaxAttemptsPerDay:              50,
		BlockDurationMinutes:           15,
		ExtendedBlockDurationHours:     24,
		MaxFailuresBeforeExtendedBlock: 20,
	}
}

func newTestProtector(t *testing.T) (*LoginProtector, *time.Time) {
	t.Helper()
	protector := NewLoginProtector(testConfig(), utils.InitLogger())
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	protector.now = func() time.Time { return now }
	return protector, &now
}

func TestAllowsUnderMinuteLimit(t *testing.T) {
	protector, _ := newTestProtector(t)

	for i := 0; i < 4; i++ {
		protector.Record("alice", "10.0.0.1", false)
	}

	result := protector.Check("alice", "10.0.0.1")
	assert.True(t, result.Allowed)
	assert.False(t, result.Blocked)
	assert.Equal(t, 1, result.RemainingAttempts)
}

func TestBlocksAtMinuteLimit(t *testing.T) {
	protector, _ := newTestProtector(t)

	for i := 0; i < 5; i++ {
		protector.Record("alice", "10.0.0.1", false)
	}

	result := protector.Check("alice", "10.0.0.1")
	require.True(t, result.Blocked)
	assert.Contains(t, result.Reason, "1 minute")

	// The block persists on subsequent checks.
	again := protector.Check("alice", "10.0.0.1")
	assert.True(t, again.Blocked)
}

func TestBlockExpires(t *testing.T) {
	protector, now := newTestProtector(t)

	for i := 0; i < 5; i++ {
		protector.Record("alice", "10.0.0.1", false)
	}
	require.True(t, protector.Check("alice", "10.0.0.1").Blocked)

	// Jump past the block and the minute window.
	*now = now.Add(16 * time.Minute)

	result := protector.Check("alice", "10.0.0.1")
	assert.False(t, result.Blocked)
	assert.True(t, result.Allowed)
}

func TestHourWindowBlocksIndependently(t *testing.T) {
	protector, now := newTestProtector(t)

	// Spread 10 failures so no single minute reaches 5.
	for i := 0; i < 10; i++ {
		protector.Record("bob", "10.0.0.2", false)
		*now = now.Add(2 * time.Minute)
	}

	result := protector.Check("bob", "10.0.0.2")
	require.True(t, result.Blocked)
	assert.Contains(t, result.Reason, "1 hour")
}

func TestBlocksByIPAcrossUsernames(t *testing.T) {
	protector, _ := newTestProtector(t)

	for i := 0; i < 5; i++ {
		protector.Record("alice", "10.0.0.1", false)
	}
	require.True(t, protector.Check("alice", "10.0.0.1").Blocked)

	// Same IP, different username: the attempts still count.
	result := protector.Check("charlie", "10.0.0.1")
	assert.True(t, result.Blocked)
}

func TestExtendedBlockAfterRepeatedFailures(t *testing.T) {
	protector, now := newTestProtector(t)

	// Accumulate 20 failures over the day without tripping shorter
	// windows, then trip the minute window.
	for i := 0; i < 20; i++ {
		protector.Record("mallory", "10.0.0.3", false)
		*now = now.Add(10 * time.Minute)
	}
	for i := 0; i < 5; i++ {
		protector.Record("mallory", "10.0.0.3", false)
	}

	result := protector.Check("mallory", "10.0.0.3")
	require.True(t, result.Blocked)

	expected := now.Add(24 * time.Hour)
	assert.WithinDuration(t, expected, result.ExpiresAt, time.Minute)
}

func TestSuccessfulLoginClearsBlocks(t *testing.T) {
	protector, now := newTestProtector(t)

	for i := 0; i < 5; i++ {
		protector.Record("alice", "10.0.0.1", false)
	}
	require.True(t, protector.Check("alice", "10.0.0.1").Blocked)

	protector.Record("alice", "10.0.0.1", true)

	// Move past the minute window so the old failures stop counting.
	*now = now.Add(2 * time.Minute)

	result := protector.Check("alice", "10.0.0.1")
	assert.False(t, result.Blocked)
}

func TestSweepRemovesExpiredState(t *testing.T) {
	protector, now := newTestProtector(t)

	for i := 0; i < 5; i++ {
		protector.Record("alice", "10.0.0.1", false)
	}
	require.True(t, protector.Check("alice", "10.0.0.1").Blocked)
	require.NotEmpty(t, protector.blocks)

	*now = now.Add(8 * 24 * time.Hour)
	protector.Sweep()

	assert.Empty(t, protector.attempts)
	assert.Empty(t, protector.blocks)
}

func TestSweepKeepsActiveBlocks(t *testing.T) {
	protector, now := newTestProtector(t)

	for i := 0; i < 5; i++ {
		protector.Record("alice", "10.0.0.1", false)
	}
	require.True(t, protector.Check("alice", "10.0.0.1").Blocked)

	*now = now.Add(time.Minute)
	protector.Sweep()

	assert.NotEmpty(t, protector.blocks, "active block must survive the sweep")
	assert.True(t, protector.Check("alice", "10.0.0.1").Blocked)
}
