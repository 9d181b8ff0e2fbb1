// LED Widgets
// Copyright (c) 2025 The LED Widgets Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of LED Widgets.
//
// LED Widgets is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// LED Widgets is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with LED Widgets.  If not, see <http://www.gnu.org/licenses/>.

package widgets

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWidget struct {
	tickErr  error
	setupErr error
	clock    *clockwork.FakeClock
	ticked   chan struct{}
	interval time.Duration
	work     time.Duration
	setups   atomic.Int32
	ticks    atomic.Int32
}

func newFakeWidget(clock *clockwork.FakeClock, interval time.Duration) *fakeWidget {
	return &fakeWidget{clock: clock, interval: interval, ticked: make(chan struct{}, 16)}
}

func (*fakeWidget) Name() string { return "fake" }

func (w *fakeWidget) Interval() time.Duration { return w.interval }

func (w *fakeWidget) Setup(context.Context) error {
	w.setups.Add(1)
	return w.setupErr
}

func (w *fakeWidget) Tick(context.Context) error {
	if w.work > 0 {
		w.clock.Advance(w.work)
	}
	w.ticks.Add(1)
	select {
	case w.ticked <- struct{}{}:
	default:
	}
	return w.tickErr
}

func waitTick(t *testing.T, w *fakeWidget) {
	t.Helper()
	select {
	case <-w.ticked:
	case <-time.After(time.Second):
		require.FailNow(t, "widget did not tick")
	}
}

func assertNoTick(t *testing.T, w *fakeWidget) {
	t.Helper()
	select {
	case <-w.ticked:
		require.FailNow(t, "unexpected tick")
	case <-time.After(50 * time.Millisecond):
	}
}

func startRunner(t *testing.T, clock clockwork.Clock, w Widget) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewRunner(clock).Run(ctx, w)
	}()
	t.Cleanup(cancel)
	return cancel, done
}

func TestRunnerTicksEveryInterval(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	w := newFakeWidget(clock, time.Second)
	cancel, done := startRunner(t, clock, w)

	waitTick(t, w)
	for i := 0; i < 3; i++ {
		require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
		clock.Advance(time.Second)
		waitTick(t, w)
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.FailNow(t, "runner did not stop")
	}
	assert.Equal(t, int32(4), w.ticks.Load())
	assert.Equal(t, int32(1), w.setups.Load())
}

func TestRunnerSleepsOnlyTheRemainder(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	w := newFakeWidget(clock, time.Second)
	w.work = 300 * time.Millisecond
	startRunner(t, clock, w)

	waitTick(t, w)
	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(699 * time.Millisecond)
	assertNoTick(t, w)
	clock.Advance(time.Millisecond)
	waitTick(t, w)
}

func TestRunnerSlowTickRunsImmediately(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	w := newFakeWidget(clock, time.Second)
	w.work = 2 * time.Second
	startRunner(t, clock, w)

	waitTick(t, w)
	waitTick(t, w)
}

func TestRunnerContinuesAfterErrors(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	w := newFakeWidget(clock, time.Second)
	w.setupErr = errors.New("upload failed")
	w.tickErr = errors.New("device unreachable")
	startRunner(t, clock, w)

	waitTick(t, w)
	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(time.Second)
	waitTick(t, w)
	assert.Equal(t, int32(2), w.ticks.Load())
}

func TestRunnerCancelledBeforeStart(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	w := newFakeWidget(clock, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, NewRunner(clock).Run(ctx, w))
	assert.Equal(t, int32(0), w.ticks.Load())
}
