package diskio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/OffBroadway/sdfatfs/pkg/sdcard"
)

type stateSeq struct {
	states []sdcard.CardState
	polls  int
}

func (s *stateSeq) CardState() sdcard.CardState {
	s.polls++
	if len(s.states) == 0 {
		return sdcard.StateTransfer
	}
	st := s.states[0]
	if len(s.states) > 1 {
		s.states = s.states[1:]
	}
	return st
}

func TestPollWaiterSpins(t *testing.T) {
	seq := &stateSeq{states: []sdcard.CardState{
		sdcard.StateReceiving, sdcard.StateProgramming, sdcard.StateTransfer,
	}}
	assert.NoError(t, PollWaiter{}.WaitReady(context.Background(), seq))
	assert.Equal(t, 3, seq.polls)
}

func TestPollWaiterInterval(t *testing.T) {
	seq := &stateSeq{states: []sdcard.CardState{sdcard.StateSending, sdcard.StateTransfer}}
	w := PollWaiter{Interval: time.Millisecond, Timeout: time.Second}
	assert.NoError(t, w.WaitReady(context.Background(), seq))
	assert.Equal(t, 2, seq.polls)
}

func TestPollWaiterTimeout(t *testing.T) {
	seq := &stateSeq{states: []sdcard.CardState{sdcard.StateProgramming}}
	w := PollWaiter{Interval: time.Millisecond, Timeout: 20 * time.Millisecond}
	assert.ErrorIs(t, w.WaitReady(context.Background(), seq), ErrWaitTimeout)

	spin := PollWaiter{Timeout: 20 * time.Millisecond}
	assert.ErrorIs(t, spin.WaitReady(context.Background(), seq), ErrWaitTimeout)
}

func TestPollWaiterCanceled(t *testing.T) {
	seq := &stateSeq{states: []sdcard.CardState{sdcard.StateProgramming}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, PollWaiter{}.WaitReady(ctx, seq), context.Canceled)
}

func TestPollWaiterDisconnected(t *testing.T) {
	seq := &stateSeq{states: []sdcard.CardState{sdcard.StateDisconnected}}
	assert.Error(t, PollWaiter{}.WaitReady(context.Background(), seq))
	assert.Equal(t, 1, seq.polls)
}
