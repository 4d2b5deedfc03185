package auth

import (
	"regexp"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(ttl time.Duration) (*CodeStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewCodeStore(ttl)
	s.clock = clock
	return s, clock
}

func TestIssueAndVerify(t *testing.T) {
	s, _ := newTestStore(10 * time.Minute)

	code, err := s.Issue("user@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(code) {
		t.Fatalf("expected a 6-digit code, got %q", code)
	}

	if !s.Verify("user@example.com", code) {
		t.Error("expected the issued code to verify")
	}
	if s.Verify("user@example.com", code) {
		t.Error("a code must be consumed on first successful verification")
	}
}

func TestVerifyRejectsWrongCode(t *testing.T) {
	s, _ := newTestStore(10 * time.Minute)

	code, err := s.Issue("user@example.com")
	if err != nil {
		t.Fatal(err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if s.Verify("user@example.com", wrong) {
		t.Error("wrong code should not verify")
	}
	// A failed attempt must not consume the pending code.
	if !s.Verify("user@example.com", code) {
		t.Error("correct code should still verify after a failed attempt")
	}
}

func TestVerifyUnknownEmail(t *testing.T) {
	s, _ := newTestStore(10 * time.Minute)
	if s.Verify("nobody@example.com", "123456") {
		t.Error("verification without an issued code should fail")
	}
}

func TestVerifyExpiredCode(t *testing.T) {
	s, clock := newTestStore(10 * time.Minute)

	code, err := s.Issue("user@example.com")
	if err != nil {
		t.Fatal(err)
	}

	clock.advance(10*time.Minute + time.Second)

	if s.Verify("user@example.com", code) {
		t.Error("expired code should not verify")
	}
	if _, ok := s.codes["user@example.com"]; ok {
		t.Error("expired entry should be deleted on the failed verification")
	}
}

func TestIssueReplacesPendingCode(t *testing.T) {
	s, _ := newTestStore(10 * time.Minute)

	first, err := s.Issue("user@example.com")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Issue("user@example.com")
	if err != nil {
		t.Fatal(err)
	}

	if first != second && s.Verify("user@example.com", first) {
		t.Error("reissuing should invalidate the previous code")
	}
	if !s.Verify("user@example.com", second) {
		t.Error("the latest code should verify")
	}
}

func TestCleanupSweepsExpiredCodes(t *testing.T) {
	s, clock := newTestStore(time.Minute)

	if _, err := s.Issue("stale@example.com"); err != nil {
		t.Fatal(err)
	}
	clock.advance(2 * time.Minute)
	if _, err := s.Issue("fresh@example.com"); err != nil {
		t.Fatal(err)
	}

	s.performCleanup()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.codes["stale@example.com"]; ok {
		t.Error("expired code should be swept")
	}
	if _, ok := s.codes["fresh@example.com"]; !ok {
		t.Error("live code should survive the sweep")
	}
}

func TestStartStopCleanup(t *testing.T) {
	s := NewCodeStore(time.Minute)
	s.StartCleanup(10 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	s.StopCleanup()
}
