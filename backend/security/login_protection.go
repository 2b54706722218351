package security

import (
	"fmt"
	"log"
	"sync"
	"time"

	"learnspace/backend/config"
)

// LoginAttempt and Block records live in process memory only. A restart
// silently resets all of them; that is an accepted limitation of the
// single-process deployment, not something this service defends against.

type LoginAttempt struct {
	Username   string
	IPAddress  string
	Time       time.Time
	Successful bool
}

type Block struct {
	Username  string
	IPAddress string
	Reason    string
	BlockedAt time.Time
	ExpiresAt time.Time
}

type CheckResult struct {
	Allowed           bool
	Blocked           bool
	Reason            string
	ExpiresAt         time.Time
	RemainingAttempts int
}

// LoginProtector throttles failed authentication attempts per username
// and per IP across three independent rolling windows.
type LoginProtector struct {
	cfg    *config.Config
	logger *log.Logger

	mu       sync.Mutex
	attempts []LoginAttempt
	blocks   []Block

	// injectable for tests
	now func() time.Time
}

func NewLoginProtector(cfg *config.Config, logger *log.Logger) *LoginProtector {
	return &LoginProtector{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Check evaluates an incoming login attempt before credentials are
// verified. An existing block wins over everything else; otherwise the
// minute, hour and day windows are tested in order of severity.
func (p *LoginProtector) Check(username, ip string) CheckResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()

	if block := p.activeBlock(username, ip, now); block != nil {
		return CheckResult{
			Blocked:   true,
			Reason:    block.Reason,
			ExpiresAt: block.ExpiresAt,
		}
	}

	lastMinute := p.failedCount(username, ip, now.Add(-time.Minute))
	lastHour := p.failedCount(username, ip, now.Add(-time.Hour))
	lastDay := p.failedCount(username, ip, now.Add(-24*time.Hour))

	blockMinutes := p.cfg.BlockDurationMinutes
	if lastDay >= p.cfg.MaxFailuresBeforeExtendedBlock {
		blockMinutes = p.cfg.ExtendedBlockDurationHours * 60
	}

	switch {
	case lastMinute >= p.cfg.MaxAttemptsPerMinute:
		return p.block(username, ip, "Too many attempts in 1 minute", blockMinutes, now)
	case lastHour >= p.cfg.MaxAttemptsPerHour:
		return p.block(username, ip, "Too many attempts in 1 hour", blockMinutes*2, now)
	case lastDay >= p.cfg.MaxAttemptsPerDay:
		return p.block(username, ip, "Daily attempt limit exceeded", p.cfg.ExtendedBlockDurationHours*60, now)
	}

	remaining := p.cfg.MaxAttemptsPerMinute - lastMinute
	if r := p.cfg.MaxAttemptsPerHour - lastHour; r < remaining {
		remaining = r
	}
	if r := p.cfg.MaxAttemptsPerDay - lastDay; r < remaining {
		remaining = r
	}

	return CheckResult{Allowed: true, RemainingAttempts: remaining}
}

// Record logs the outcome of a credential check. A successful login
// clears any active blocks for that username/IP.
func (p *LoginProtector) Record(username, ip string, successful bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.attempts = append(p.attempts, LoginAttempt{
		Username:   username,
		IPAddress:  ip,
		Time:       p.now(),
		Successful: successful,
	})

	if successful {
		p.clearBlocks(username, ip)
	}
}

// Sweep removes expired blocks and attempts older than the retention
// window. Cleanup is periodic rather than eager.
func (p *LoginProtector) Sweep() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	cutoff := now.Add(-7 * 24 * time.Hour)

	kept := p.attempts[:0]
	for _, attempt := range p.attempts {
		if attempt.Time.After(cutoff) {
			kept = append(kept, attempt)
		}
	}
	removedAttempts := len(p.attempts) - len(kept)
	p.attempts = kept

	activeBlocks := p.blocks[:0]
	for _, block := range p.blocks {
		if block.ExpiresAt.After(now) {
			activeBlocks = append(activeBlocks, block)
		}
	}
	removedBlocks := len(p.blocks) - len(activeBlocks)
	p.blocks = activeBlocks

	if removedAttempts > 0 || removedBlocks > 0 {
		p.logger.Printf("security sweep: removed %d attempts, %d expired blocks", removedAttempts, removedBlocks)
	}
}

// StartSweeper runs Sweep on the given interval until stop is closed.
func (p *LoginProtector) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Sweep()
			case <-stop:
				return
			}
		}
	}()
}

func (p *LoginProtector) activeBlock(username, ip string, now time.Time) *Block {
	var newest *Block
	for i := range p.blocks {
		block := &p.blocks[i]
		if !block.ExpiresAt.After(now) {
			continue
		}
		if (username != "" && block.Username == username) || (ip != "" && block.IPAddress == ip) {
			if newest == nil || block.ExpiresAt.After(newest.ExpiresAt) {
				newest = block
			}
		}
	}
	return newest
}

func (p *LoginProtector) failedCount(username, ip string, since time.Time) int {
	count := 0
	for _, attempt := range p.attempts {
		if attempt.Successful || attempt.Time.Before(since) {
			continue
		}
		if (username != "" && attempt.Username == username) || (ip != "" && attempt.IPAddress == ip) {
			count++
		}
	}
	return count
}

func (p *LoginProtector) block(username, ip, reason string, durationMinutes int, now time.Time) CheckResult {
	expiresAt := now.Add(time.Duration(durationMinutes) * time.Minute)
	p.blocks = append(p.blocks, Block{
		Username:  username,
		IPAddress: ip,
		Reason:    reason,
		BlockedAt: now,
		ExpiresAt: expiresAt,
	})

	p.logger.Printf("security block: user=%s ip=%s duration=%dm reason=%s", username, ip, durationMinutes, reason)

	return CheckResult{
		Blocked:   true,
		Reason:    fmt.Sprintf("%s. Try again in %d minutes.", reason, durationMinutes),
		ExpiresAt: expiresAt,
	}
}

func (p *LoginProtector) clearBlocks(username, ip string) {
	kept := p.blocks[:0]
	for _, block := range p.blocks {
		if (username != "" && block.Username == username) || (ip != "" && block.IPAddress == ip) {
			continue
		}
		kept = append(kept, block)
	}
	p.blocks = kept
}
