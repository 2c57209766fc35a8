package channels

import (
	"context"
	"errors"
	"testing"

	"github.com/nextlevelbuilder/topicbot/internal/router"
)

type fakeChannel struct {
	*BaseChannel
	startErr error
	stopped  bool
}

func (f *fakeChannel) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.SetRunning(true)
	return nil
}

func (f *fakeChannel) Stop(context.Context) error {
	f.stopped = true
	f.SetRunning(false)
	return nil
}

func newFake(name string, startErr error) *fakeChannel {
	return &fakeChannel{BaseChannel: NewBaseChannel(name, nil, true), startErr: startErr}
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager()
	ok := newFake("discord", nil)
	bad := newFake("other", errors.New("bad token"))
	m.RegisterChannel(ok.Name(), ok)
	m.RegisterChannel(bad.Name(), bad)

	if got := m.GetEnabledChannels(); len(got) != 2 || got[0] != "discord" {
		t.Errorf("channels = %v", got)
	}
	if err := m.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if !ok.IsRunning() || bad.IsRunning() {
		t.Errorf("running: ok=%v bad=%v", ok.IsRunning(), bad.IsRunning())
	}

	m.StopAll(context.Background())
	if !ok.stopped || bad.stopped {
		t.Errorf("stopped: ok=%v bad=%v", ok.stopped, bad.stopped)
	}
}

func TestManager_StartAllFails(t *testing.T) {
	if err := NewManager().StartAll(context.Background()); err == nil {
		t.Error("expected error with no channels")
	}

	m := NewManager()
	m.RegisterChannel("x", newFake("x", errors.New("boom")))
	if err := m.StartAll(context.Background()); err == nil {
		t.Error("expected error when every channel fails")
	}
}

type recordingRouter struct{ got router.Message }

func (r *recordingRouter) Route(_ context.Context, msg router.Message, _ router.Directory) router.Decision {
	r.got = msg
	return router.Decision{State: router.StateUnmatched}
}

func TestBaseChannel_HandleMessage(t *testing.T) {
	r := &recordingRouter{}
	c := NewBaseChannel("discord", r, false)
	d := c.HandleMessage(context.Background(), router.Message{ID: "m1"}, nil)
	if r.got.ID != "m1" || d.State != router.StateUnmatched {
		t.Errorf("router saw %+v, decision %+v", r.got, d)
	}
	if c.Announce() {
		t.Error("announce should be false")
	}
}
