// Package worker runs background maintenance next to the HTTP server.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper removes expired entries and reports how many it dropped.
type Sweeper interface {
	Sweep(ctx context.Context, idle time.Duration) (int, error)
}

// Janitor periodically sweeps idle chat sessions out of a store.
type Janitor struct {
	target   Sweeper
	idle     time.Duration
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewJanitor(target Sweeper, idle, interval time.Duration) *Janitor {
	return &Janitor{
		target:   target,
		idle:     idle,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (j *Janitor) Start() {
	j.wg.Add(1)
	go j.run()
	logrus.WithFields(logrus.Fields{
		"idle":     j.idle.String(),
		"interval": j.interval.String(),
	}).Info("Started session janitor")
}

// Stop ends the sweep loop and waits for an in-flight sweep to finish.
func (j *Janitor) Stop() {
	close(j.stopChan)
	j.wg.Wait()
}

func (j *Janitor) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			logrus.Info("Session janitor shutting down")
			return
		case <-ticker.C:
			j.sweepOnce()
		}
	}
}

func (j *Janitor) sweepOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	removed, err := j.target.Sweep(ctx, j.idle)
	if err != nil {
		logrus.WithError(err).Warn("session sweep failed")
		return
	}
	if removed > 0 {
		logrus.WithField("removed", removed).Info("Expired idle chat sessions")
	}
}
