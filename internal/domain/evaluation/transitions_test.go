package evaluation

import (
	"errors"
	"testing"
)

func TestNextStatusAllowedTransitions(t *testing.T) {
	cases := []struct {
		from, event, want string
	}{
		{StatusPendingSelfAssessment, EventSubmitSelfAssessment, StatusAwaitingManagerReview},
		{StatusAwaitingManagerReview, EventApprove, StatusApproved},
		{StatusAwaitingManagerReview, EventReject, StatusRejected},
		{StatusAwaitingManagerReview, EventReturn, StatusReturnedForAdjustment},
		{StatusReturnedForAdjustment, EventSubmitSelfAssessment, StatusAwaitingManagerReview},
	}
	for _, tc := range cases {
		got, err := NextStatus(tc.from, tc.event)
		if err != nil {
			t.Fatalf("NextStatus(%s, %s): unexpected error %v", tc.from, tc.event, err)
		}
		if got != tc.want {
			t.Fatalf("NextStatus(%s, %s) = %s, want %s", tc.from, tc.event, got, tc.want)
		}
	}
}

func TestNextStatusRejectsEverythingElse(t *testing.T) {
	allowed := map[[2]string]bool{
		{StatusPendingSelfAssessment, EventSubmitSelfAssessment}: true,
		{StatusAwaitingManagerReview, EventApprove}:              true,
		{StatusAwaitingManagerReview, EventReject}:               true,
		{StatusAwaitingManagerReview, EventReturn}:               true,
		{StatusReturnedForAdjustment, EventSubmitSelfAssessment}: true,
	}
	events := []string{EventSubmitSelfAssessment, EventApprove, EventReject, EventReturn}

	for _, from := range Statuses() {
		for _, event := range events {
			if allowed[[2]string{from, event}] {
				continue
			}
			_, err := NextStatus(from, event)
			var terr *InvalidTransitionError
			if !errors.As(err, &terr) {
				t.Fatalf("NextStatus(%s, %s): want InvalidTransitionError, got %v", from, event, err)
			}
			if terr.From != from || terr.Event != event {
				t.Fatalf("error carries %q/%q, want %q/%q", terr.From, terr.Event, from, event)
			}
		}
	}
}

func TestTerminalStatusesAcceptNoEvents(t *testing.T) {
	for _, from := range []string{StatusApproved, StatusRejected} {
		for _, event := range []string{EventSubmitSelfAssessment, EventApprove, EventReject, EventReturn} {
			if _, err := NextStatus(from, event); err == nil {
				t.Fatalf("terminal status %s accepted event %s", from, event)
			}
		}
	}
}

func TestNextStatusUnknownStatus(t *testing.T) {
	if _, err := NextStatus("archived", EventApprove); err == nil {
		t.Fatal("unknown status must not transition")
	}
}

func TestKnownStatus(t *testing.T) {
	for _, status := range Statuses() {
		if !KnownStatus(status) {
			t.Fatalf("KnownStatus(%s) = false", status)
		}
	}
	if KnownStatus("deleted") {
		t.Fatal("soft deletion is not a status")
	}
}
