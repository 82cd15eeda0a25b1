package transcript

import (
	"testing"
	"time"
)

func waitForEntries(t *testing.T, a *Assembler, want int) []Entry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if entries := a.Snapshot(); len(entries) >= want {
			return entries
		}
		time.Sleep(5 * time.Millisecond)
	}
	entries := a.Snapshot()
	t.Fatalf("timed out waiting for %d entries, have %d: %+v", want, len(entries), entries)
	return nil
}

func TestAssemblerConcatenatesAndCommits(t *testing.T) {
	a := New(WithIdleTimeout(20 * time.Millisecond))
	defer a.Close()

	a.AddFragment(RoleAssistant, "Hello")
	a.AddFragment(RoleAssistant, "there")
	a.SpeechEnd()

	a.AddFragment(RoleUser, "Hi")
	entries := waitForEntries(t, a, 2)

	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 entries, got %d", len(entries))
	}
	if entries[0].Role != RoleAssistant || entries[0].Message != "Hello there" {
		t.Errorf("first entry = %s %q, want assistant %q", entries[0].Role, entries[0].Message, "Hello there")
	}
	if entries[1].Role != RoleUser || entries[1].Message != "Hi" {
		t.Errorf("second entry = %s %q, want user %q", entries[1].Role, entries[1].Message, "Hi")
	}
}

func TestAssemblerOpposingSpeakerForcesCommit(t *testing.T) {
	a := New(WithIdleTimeout(time.Hour))
	defer a.Close()

	a.AddFragment(RoleUser, "I worked on")
	a.AddFragment(RoleUser, "a payments system")
	a.AddFragment(RoleAssistant, "Interesting, tell me more.")

	entries := a.Snapshot()
	if len(entries) != 1 {
		t.Fatalf("expected 1 committed entry, got %d", len(entries))
	}
	if entries[0].Role != RoleUser || entries[0].Message != "I worked on a payments system" {
		t.Errorf("committed entry = %s %q", entries[0].Role, entries[0].Message)
	}

	role, text := a.Pending()
	if role != RoleAssistant || text != "Interesting, tell me more." {
		t.Errorf("pending = %s %q", role, text)
	}
}

func TestAssemblerSpeechEndIgnoresUserBuffer(t *testing.T) {
	a := New(WithIdleTimeout(time.Hour))
	defer a.Close()

	a.AddFragment(RoleUser, "Still thinking")
	a.SpeechEnd()

	if entries := a.Snapshot(); len(entries) != 0 {
		t.Fatalf("speech-end must not commit a user buffer, got %d entries", len(entries))
	}
	role, text := a.Pending()
	if role != RoleUser || text != "Still thinking" {
		t.Errorf("pending = %s %q", role, text)
	}
}

func TestAssemblerIdleTimerRearmsPerFragment(t *testing.T) {
	a := New(WithIdleTimeout(60 * time.Millisecond))
	defer a.Close()

	a.AddFragment(RoleUser, "one")
	time.Sleep(30 * time.Millisecond)
	a.AddFragment(RoleUser, "two")
	time.Sleep(30 * time.Millisecond)

	// 60ms since the first fragment but only 30ms since the last; the
	// re-armed timer must not have fired yet
	if entries := a.Snapshot(); len(entries) != 0 {
		t.Fatalf("idle timer fired early, got %d entries", len(entries))
	}

	entries := waitForEntries(t, a, 1)
	if entries[0].Message != "one two" {
		t.Errorf("committed %q, want %q", entries[0].Message, "one two")
	}
}

func TestAssemblerFlushAndClose(t *testing.T) {
	a := New(WithIdleTimeout(time.Hour))

	a.AddFragment(RoleUser, "cut off mid")
	a.Close()

	entries := a.Snapshot()
	if len(entries) != 1 || entries[0].Message != "cut off mid" {
		t.Fatalf("close must flush the pending buffer, got %+v", entries)
	}
}

func TestAssemblerSystemEntriesBypassBuffering(t *testing.T) {
	a := New()
	defer a.Close()

	a.AddFragment(RoleAssistant, "pending speech")
	a.System("call connected")

	entries := a.Snapshot()
	if len(entries) != 1 || entries[0].Role != RoleSystem {
		t.Fatalf("expected one system entry, got %+v", entries)
	}
	if role, _ := a.Pending(); role != RoleAssistant {
		t.Errorf("system entry must not disturb the pending buffer, pending role = %q", role)
	}
}

func TestAssemblerCommitCallback(t *testing.T) {
	var committed []Entry
	a := New(
		WithIdleTimeout(time.Hour),
		WithCommitFunc(func(e Entry) { committed = append(committed, e) }),
	)
	defer a.Close()

	a.AddFragment(RoleAssistant, "First question.")
	a.SpeechEnd()

	if len(committed) != 1 || committed[0].Message != "First question." {
		t.Fatalf("commit callback saw %+v", committed)
	}
}

func TestAssemblerTimestampIsFirstFragment(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	current := base
	a := New(
		WithIdleTimeout(time.Hour),
		withClock(func() time.Time { return current }),
	)
	defer a.Close()

	a.AddFragment(RoleAssistant, "Tell me")
	current = base.Add(3 * time.Second)
	a.AddFragment(RoleAssistant, "about yourself.")
	a.SpeechEnd()

	entries := a.Snapshot()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].Timestamp.Equal(base) {
		t.Errorf("timestamp = %v, want first-fragment time %v", entries[0].Timestamp, base)
	}
}
