package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_DeliversCurrentState(t *testing.T) {
	s := New(State{Target: "prod"})
	sub := s.Subscribe()
	defer sub.Close()

	select {
	case st := <-sub.C():
		assert.Equal(t, "prod", st.Target)
		assert.True(t, st.HasTarget())
	default:
		t.Fatal("expected current state on subscribe")
	}
}

func TestSubscribe_EmptyTarget(t *testing.T) {
	s := New(State{})
	sub := s.Subscribe()
	defer sub.Close()

	st := <-sub.C()
	assert.False(t, st.HasTarget())
}

func TestSetTarget_NotifiesSubscribers(t *testing.T) {
	s := New(State{})
	a := s.Subscribe()
	b := s.Subscribe()
	defer a.Close()
	defer b.Close()
	<-a.C()
	<-b.C()

	s.SetTarget("staging")

	assert.Equal(t, "staging", (<-a.C()).Target)
	assert.Equal(t, "staging", (<-b.C()).Target)
	assert.Equal(t, "staging", s.State().Target)
}

func TestSetTarget_SameValueDoesNotNotify(t *testing.T) {
	s := New(State{Target: "prod"})
	sub := s.Subscribe()
	defer sub.Close()
	<-sub.C()

	s.SetTarget("prod")

	select {
	case st := <-sub.C():
		t.Fatalf("unexpected notification: %+v", st)
	default:
	}
}

func TestSetTarget_LatestWins(t *testing.T) {
	s := New(State{})
	sub := s.Subscribe()
	defer sub.Close()

	s.SetTarget("a")
	s.SetTarget("b")
	s.SetTarget("c")

	assert.Equal(t, "c", (<-sub.C()).Target)
	select {
	case st := <-sub.C():
		t.Fatalf("expected only the latest state, also got %+v", st)
	default:
	}
}

func TestClose_StopsDelivery(t *testing.T) {
	s := New(State{})
	sub := s.Subscribe()
	<-sub.C()

	sub.Close()
	sub.Close()
	s.SetTarget("prod")

	_, ok := <-sub.C()
	require.False(t, ok, "channel should be closed after Close")
	assert.Empty(t, s.subs)
}
