package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

type fakeConnector struct {
	pingErr  error
	closed   bool
	sentKeys int
}

func (f *fakeConnector) SendKeys(keycode.Modifiers, []keycode.KeyCode) error { f.sentKeys++; return nil }
func (f *fakeConnector) SendConsumer(keycode.KeyCode) error                  { return nil }
func (f *fakeConnector) SendUnicode(rune) error                             { return nil }
func (f *fakeConnector) BootKeyboardOnly() bool                            { return false }
func (f *fakeConnector) GetOS() output.OS                                  { return output.OSLinux }
func (f *fakeConnector) Ping() error                                       { return f.pingErr }
func (f *fakeConnector) Close()                                            { f.closed = true }

func TestSupervisedPortReturnsErrIOWhenDisconnected(t *testing.T) {
	p := &SupervisedPort{}
	if p.Connected() {
		t.Fatalf("Connected() = true on a fresh SupervisedPort")
	}
	if err := p.SendKeys(0, nil); !errors.Is(err, output.ErrIO) {
		t.Fatalf("SendKeys on disconnected port = %v, want output.ErrIO", err)
	}
	if !p.BootKeyboardOnly() {
		t.Errorf("BootKeyboardOnly() on disconnected port = false, want true (degrade gracefully)")
	}
	if p.GetOS() != output.OSOther {
		t.Errorf("GetOS() on disconnected port = %v, want OSOther", p.GetOS())
	}
}

func TestSupervisedPortForwardsToActiveConnector(t *testing.T) {
	p := &SupervisedPort{}
	c := &fakeConnector{}
	p.set(c)

	if !p.Connected() {
		t.Fatalf("Connected() = false after set()")
	}
	if err := p.SendKeys(0, nil); err != nil {
		t.Fatalf("SendKeys: %v", err)
	}
	if c.sentKeys != 1 {
		t.Errorf("fakeConnector.sentKeys = %d, want 1 (call forwarded)", c.sentKeys)
	}
}

func TestSupervisorTryConnectSetsPortAndFiresCallback(t *testing.T) {
	c := &fakeConnector{}
	var gotConnected bool
	s := NewSupervisor(func() (Connector, error) { return c, nil },
		WithConnectionChange(func(connected bool) { gotConnected = connected }),
		WithLogger(noopRuntimeLogger{}),
	)

	s.tryConnect()
	if !s.Port().Connected() {
		t.Fatalf("Port().Connected() = false after a successful tryConnect")
	}
	if !gotConnected {
		t.Errorf("onConn callback not fired with true on connect")
	}
}

func TestSupervisorTryConnectLeavesDisconnectedOnOpenError(t *testing.T) {
	s := NewSupervisor(func() (Connector, error) { return nil, errors.New("no device") },
		WithLogger(noopRuntimeLogger{}),
	)
	s.tryConnect()
	if s.Port().Connected() {
		t.Fatalf("Port().Connected() = true after a failing Opener")
	}
}

func TestSupervisorHealthCheckDisconnectsOnPingFailure(t *testing.T) {
	c := &fakeConnector{pingErr: errors.New("usb gone")}
	var gotConnected []bool
	s := NewSupervisor(func() (Connector, error) { return c, nil },
		WithConnectionChange(func(connected bool) { gotConnected = append(gotConnected, connected) }),
		WithLogger(noopRuntimeLogger{}),
	)
	s.tryConnect()
	s.healthCheck()

	if s.Port().Connected() {
		t.Fatalf("Port().Connected() = true after a failed health check")
	}
	if !c.closed {
		t.Errorf("fakeConnector.closed = false, want the lost connection closed")
	}
	if len(gotConnected) != 2 || gotConnected[0] != true || gotConnected[1] != false {
		t.Fatalf("onConn callback sequence = %+v, want [true, false]", gotConnected)
	}
}

func TestSupervisorHealthCheckNoopWhenDisconnected(t *testing.T) {
	s := NewSupervisor(func() (Connector, error) { return nil, errors.New("no device") },
		WithLogger(noopRuntimeLogger{}),
	)
	s.healthCheck() // must not panic with no active connector
	if s.Port().Connected() {
		t.Fatalf("Port().Connected() = true, want false")
	}
}

func TestSupervisorRunConnectsAndRespectsContextCancel(t *testing.T) {
	c := &fakeConnector{}
	s := NewSupervisor(func() (Connector, error) { return c, nil },
		WithPollInterval(5*time.Millisecond),
		WithHealthInterval(5*time.Millisecond),
		WithLogger(noopRuntimeLogger{}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for !s.Port().Connected() {
		select {
		case <-deadline:
			t.Fatalf("Supervisor never connected within 1s")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return within 1s of context cancellation")
	}
	if !c.closed {
		t.Errorf("fakeConnector.closed = false after Run shut down, want true")
	}
}

type noopRuntimeLogger struct{}

func (noopRuntimeLogger) Printf(string, ...interface{}) {}
