package backup

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultAutoInterval is the backup period when none is configured
const DefaultAutoInterval = 30 * time.Minute

// jobTimeout bounds a single scheduled backup
const jobTimeout = 4 * time.Minute

// AutoBackup is a running periodic backup. Stop may be called any number
// of times.
type AutoBackup struct {
	Interval time.Duration

	c     *cron.Cron
	owner *Pipeline
	once  sync.Once
}

// Stop halts the schedule and waits for a running backup to finish
func (a *AutoBackup) Stop() {
	a.once.Do(func() {
		<-a.c.Stop().Done()
		a.owner.release(a)
	})
}

// StartAutoBackup schedules CreateBackup every interval, replacing any
// schedule already running. A backup still running when the next one is
// due makes that one skip.
func (p *Pipeline) StartAutoBackup(interval time.Duration) (*AutoBackup, error) {
	if interval <= 0 {
		interval = DefaultAutoInterval
	}
	if interval < time.Second {
		return nil, fmt.Errorf("auto-backup interval %s is below one second", interval)
	}

	p.StopAutoBackup()

	logger := cron.PrintfLogger(log.Default())
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(cron.Every(interval), cron.FuncJob(p.runBackup))

	auto := &AutoBackup{Interval: interval, c: c, owner: p}

	p.mu.Lock()
	p.auto = auto
	p.mu.Unlock()

	c.Start()
	log.Printf("[backup] auto-backup started every=%s", interval)
	return auto, nil
}

// StopAutoBackup stops the running schedule, if any, and reports its
// interval
func (p *Pipeline) StopAutoBackup() (time.Duration, bool) {
	p.mu.Lock()
	auto := p.auto
	p.auto = nil
	p.mu.Unlock()

	if auto == nil {
		return 0, false
	}
	auto.Stop()
	log.Printf("[backup] auto-backup stopped")
	return auto.Interval, true
}

// release forgets a if it is still the current schedule
func (p *Pipeline) release(a *AutoBackup) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.auto == a {
		p.auto = nil
	}
}

// AutoBackupRunning reports whether a schedule is active
func (p *Pipeline) AutoBackupRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.auto != nil
}

func (p *Pipeline) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := p.CreateBackup(ctx); err != nil {
		log.Printf("[backup] scheduled backup failed: %v", err)
	}
}
