/*
scheduler.go - Background coverage reminder scan

PURPOSE:
  Periodically scans the upcoming lookahead window for understaffed shifts
  and notifies the configured recipients (typically the duty supervisors).
  Purely additive: reminders never mutate the ledger.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - One notification per understaffed (date, guard type) per scan
  - Not-applicable weekdays are skipped, not reported

USAGE:
  scheduler := NewReminderScheduler(classifier, guardTypes, notifier, cfg)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - schedule/coverage.go: The classification the scan is built on
  - config/config.go: ReminderConfig
*/
package api

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/firehall/shift-engine/config"
	"github.com/firehall/shift-engine/schedule"
)

// ReminderScheduler raises coverage reminders for upcoming vacant or
// partially staffed shifts.
type ReminderScheduler struct {
	Classifier *schedule.Classifier
	GuardTypes schedule.GuardTypeStore
	Notifier   *schedule.Dispatcher
	Config     config.ReminderConfig

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReminderScheduler creates a new scheduler.
func NewReminderScheduler(classifier *schedule.Classifier, guardTypes schedule.GuardTypeStore, notifier *schedule.Dispatcher, cfg config.ReminderConfig) *ReminderScheduler {
	return &ReminderScheduler{
		Classifier: classifier,
		GuardTypes: guardTypes,
		Notifier:   notifier,
		Config:     cfg,
		stop:       make(chan struct{}),
	}
}

// Start begins the scheduler.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Config.Enabled {
		log.Println("[Reminder] Disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.Config.Interval)
	rs.wg.Add(1)
	go rs.run()

	log.Printf("[Reminder] Started with interval %v, lookahead %d days",
		rs.Config.Interval, rs.Config.LookaheadDays)
}

// Stop stops the scheduler.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Println("[Reminder] Stopped")
	}
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.scan()

	for {
		select {
		case <-rs.ticker.C:
			rs.scan()
		case <-rs.stop:
			return
		}
	}
}

// RunNow triggers an immediate scan (for testing/admin).
func (rs *ReminderScheduler) RunNow() {
	rs.scan()
}

func (rs *ReminderScheduler) scan() {
	ctx := context.Background()
	from := schedule.Today()
	to := from.AddDays(rs.Config.LookaheadDays - 1)

	guardTypes, err := rs.GuardTypes.List(ctx, false)
	if err != nil {
		log.Printf("[Reminder] Error listing guard types: %v", err)
		return
	}

	raised := 0
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		for _, gt := range guardTypes {
			if !gt.AppliesOn(d) {
				continue
			}
			state, err := rs.Classifier.Classify(ctx, d, gt.ID)
			if err != nil {
				log.Printf("[Reminder] Error classifying %s on %s: %v", gt.ID, d, err)
				continue
			}
			if state == schedule.CoverageComplete {
				continue
			}

			title := fmt.Sprintf("Understaffed shift: %s on %s", gt.Name, d)
			body := fmt.Sprintf("%s on %s is %s (%d required)",
				gt.Name, d, state, gt.RequiredPersonnel)
			for _, recipient := range rs.Config.Recipients {
				rs.Notifier.Emit(ctx, schedule.EmployeeID(recipient),
					schedule.NotifyCoverageReminder, title, body,
					"/planning?date="+d.String())
				raised++
			}
		}
	}

	if raised > 0 {
		log.Printf("[Reminder] Scan complete: %d reminders raised", raised)
	}
}
