package session

import (
	"testing"
	"time"
)

func TestDuplicateGuardCheckAndUpdate(t *testing.T) {
	base := time.Unix(1000, 0).UTC()

	tests := []struct {
		name       string
		firstText  string
		secondText string
		gap        time.Duration
		wantReject bool
	}{
		{
			name:       "identical text inside window rejects",
			firstText:  "hi",
			secondText: "hi",
			gap:        2 * time.Second,
			wantReject: true,
		},
		{
			name:       "identical text after window accepts",
			firstText:  "hi",
			secondText: "hi",
			gap:        15 * time.Second,
		},
		{
			name:       "different text inside window accepts",
			firstText:  "hi",
			secondText: "hello",
			gap:        2 * time.Second,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			guard := NewDuplicateGuard(10 * time.Second)
			if guard.CheckAndUpdate("42", testCase.firstText, base) {
				t.Fatal("first message should never be rejected")
			}

			got := guard.CheckAndUpdate("42", testCase.secondText, base.Add(testCase.gap))
			if got != testCase.wantReject {
				t.Fatalf("reject = %v, want %v", got, testCase.wantReject)
			}
		})
	}
}

func TestDuplicateGuardCooldownAnchoredToFirstOccurrence(t *testing.T) {
	t.Parallel()

	base := time.Unix(1000, 0).UTC()
	guard := NewDuplicateGuard(10 * time.Second)

	if guard.CheckAndUpdate("42", "hi", base) {
		t.Fatal("first message should be accepted")
	}
	// Rejections must not refresh the timestamp, so repeats cannot extend
	// the cooldown indefinitely.
	if !guard.CheckAndUpdate("42", "hi", base.Add(6*time.Second)) {
		t.Fatal("repeat inside window should be rejected")
	}
	if guard.CheckAndUpdate("42", "hi", base.Add(11*time.Second)) {
		t.Fatal("repeat after the anchored window should be accepted")
	}
}

func TestDuplicateGuardIsPartitionedByUser(t *testing.T) {
	t.Parallel()

	base := time.Unix(1000, 0).UTC()
	guard := NewDuplicateGuard(10 * time.Second)

	if guard.CheckAndUpdate("42", "hi", base) {
		t.Fatal("first message should be accepted")
	}
	if guard.CheckAndUpdate("43", "hi", base.Add(time.Second)) {
		t.Fatal("identical text from another user should be accepted")
	}
}
