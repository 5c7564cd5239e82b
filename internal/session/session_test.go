// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/JoranBergfeld/BouncingClippy/internal/model"
)

// fakeGateway returns canned replies or a fixed error.
type fakeGateway struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
	// seenTurns records the transcript passed on each call.
	seenTurns [][]model.Turn
	// delay simulates a slow completion.
	delay time.Duration
}

func (f *fakeGateway) Complete(ctx context.Context, turns []model.Turn) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.seenTurns = append(f.seenTurns, turns)
	if f.err != nil {
		return "", f.err
	}
	reply := fmt.Sprintf("reply %d", f.calls)
	if len(f.replies) > 0 {
		reply = f.replies[(f.calls-1)%len(f.replies)]
	}
	return reply, nil
}

func TestSendAppendsUserAndAssistant(t *testing.T) {
	s := New("test", "sys")
	gw := &fakeGateway{replies: []string{"hi there"}}

	reply, err := s.Send(context.Background(), gw, "hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("unexpected reply %q", reply)
	}

	turns := s.Turns()
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[1].Role != model.RoleUser || turns[1].Content != "hello" {
		t.Errorf("user turn wrong: %+v", turns[1])
	}
	if turns[2].Role != model.RoleAssistant || turns[2].Content != "hi there" {
		t.Errorf("assistant turn wrong: %+v", turns[2])
	}
}

func TestSendIncludesFullHistory(t *testing.T) {
	s := New("test", "sys")
	gw := &fakeGateway{}

	s.Send(context.Background(), gw, "first")
	s.Send(context.Background(), gw, "second")

	if len(gw.seenTurns) != 2 {
		t.Fatalf("expected 2 gateway calls, got %d", len(gw.seenTurns))
	}
	// Second call sees system + user + assistant + user.
	second := gw.seenTurns[1]
	if len(second) != 4 {
		t.Fatalf("second call saw %d turns, want 4", len(second))
	}
	if second[0].Role != model.RoleSystem {
		t.Errorf("first turn sent to gateway was %q, want system", second[0].Role)
	}
}

func TestSendEmptyMessageIsNoOp(t *testing.T) {
	s := New("test", "sys")
	gw := &fakeGateway{}

	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := s.Send(context.Background(), gw, input)
		if !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Send(%q): expected ErrEmptyMessage, got %v", input, err)
		}
	}
	if gw.calls != 0 {
		t.Errorf("gateway called %d times for empty input", gw.calls)
	}
	if s.Len() != 1 {
		t.Errorf("empty input grew transcript to %d", s.Len())
	}
}

func TestSendFailureKeepsUserTurn(t *testing.T) {
	s := New("test", "sys")

	gw := &fakeGateway{err: errors.New("service down")}
	_, err := s.Send(context.Background(), gw, "Hi")
	if err == nil {
		t.Fatal("expected error from failing gateway")
	}

	// The user turn stays so a retry carries full context; no
	// assistant turn is added.
	turns := s.Turns()
	if len(turns) != 2 {
		t.Fatalf("transcript length after failed call = %d, want 2", len(turns))
	}
	last := turns[len(turns)-1]
	if last.Role != model.RoleUser || last.Content != "Hi" {
		t.Errorf("last turn = {%s, %q}, want the user turn {user, \"Hi\"}", last.Role, last.Content)
	}
}

func TestSendFailureThenRetrySendsRetainedContext(t *testing.T) {
	s := New("test", "sys")

	_, err := s.Send(context.Background(), &fakeGateway{err: errors.New("boom")}, "first try")
	if err == nil {
		t.Fatal("expected error from failing gateway")
	}

	gw := &fakeGateway{replies: []string{"recovered"}}
	reply, err := s.Send(context.Background(), gw, "second try")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if reply != "recovered" {
		t.Errorf("reply = %q, want recovered", reply)
	}

	// The retry's gateway call carries the failed exchange's user turn.
	sent := gw.seenTurns[0]
	if len(sent) != 3 {
		t.Fatalf("retry sent %d turns, want 3 (system + retained user + new user)", len(sent))
	}
	if sent[1].Content != "first try" {
		t.Errorf("retained turn content = %q, want \"first try\"", sent[1].Content)
	}
	if s.Len() != 4 {
		t.Errorf("transcript length = %d, want 4", s.Len())
	}
}

func TestSendSerializesConcurrentExchanges(t *testing.T) {
	s := New("test", "sys")
	gw := &fakeGateway{delay: 10 * time.Millisecond}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Send(context.Background(), gw, fmt.Sprintf("message %d", n))
		}(i)
	}
	wg.Wait()

	turns := s.Turns()
	if len(turns) != 11 {
		t.Fatalf("expected 11 turns (system + 5 pairs), got %d", len(turns))
	}
	// Roles must strictly alternate user/assistant after the system turn.
	for i := 1; i < len(turns); i++ {
		want := model.RoleUser
		if i%2 == 0 {
			want = model.RoleAssistant
		}
		if turns[i].Role != want {
			t.Errorf("turn %d: role %q, want %q", i, turns[i].Role, want)
		}
	}
}

func TestClearResetsToSystemTurn(t *testing.T) {
	s := New("test", "sys")
	s.Send(context.Background(), &fakeGateway{}, "hello")

	s.Clear()
	if s.Len() != 1 {
		t.Errorf("expected length 1 after clear, got %d", s.Len())
	}

	// Clearing again is harmless.
	s.Clear()
	if s.Len() != 1 {
		t.Errorf("second clear changed length to %d", s.Len())
	}
}

// =============================================================================
// MANAGER TESTS
// =============================================================================

func TestManagerGetOrCreate(t *testing.T) {
	m := NewManager("sys")

	a := m.GetOrCreate("alpha")
	b := m.GetOrCreate("alpha")
	if a != b {
		t.Error("same ID returned different sessions")
	}

	c := m.GetOrCreate("beta")
	if c == a {
		t.Error("different IDs shared a session")
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", m.Len())
	}
}

func TestManagerEmptyIDAllocatesUUID(t *testing.T) {
	m := NewManager("sys")

	a := m.GetOrCreate("")
	b := m.GetOrCreate("")
	if a.ID() == "" || b.ID() == "" {
		t.Fatal("empty ID not replaced with generated one")
	}
	if a.ID() == b.ID() {
		t.Error("two empty-ID requests shared a session")
	}
}

func TestManagerClearUnknownIDIsNoOp(t *testing.T) {
	m := NewManager("sys")
	m.Clear("never-seen")
	if m.Len() != 0 {
		t.Errorf("clearing unknown ID created a session, len=%d", m.Len())
	}
}

func TestManagerConcurrentGetOrCreate(t *testing.T) {
	m := NewManager("sys")

	var wg sync.WaitGroup
	sessions := make([]*Session, 20)
	for i := range sessions {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sessions[n] = m.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(sessions); i++ {
		if sessions[i] != sessions[0] {
			t.Fatal("concurrent GetOrCreate returned distinct sessions for one ID")
		}
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 session, got %d", m.Len())
	}
}
