package eligibility

import (
	"errors"
	"sort"
	"testing"
)

func eligible(userID string, active bool) EligibleUser {
	return EligibleUser{UserID: userID, Active: active}
}

func mapping(managerID string, active bool) ManagerMapping {
	return ManagerMapping{ManagerID: managerID, Active: active}
}

func sorted(usersIDs []string) []string {
	out := append([]string(nil), usersIDs...)
	sort.Strings(out)
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEffectiveEligibleGlobalOnly(t *testing.T) {
	got := EffectiveEligible(nil, []EligibleUser{eligible("u1", true), eligible("u2", false)})
	if !equal(sorted(got), []string{"u1"}) {
		t.Fatalf("got %v, want [u1]", got)
	}
}

func TestEffectiveEligibleScopedWinsOverGlobal(t *testing.T) {
	global := []EligibleUser{eligible("u1", true), eligible("u2", true)}
	// u1 explicitly opted out for this period, u3 opted in only here.
	scoped := []EligibleUser{eligible("u1", false), eligible("u3", true)}

	got := EffectiveEligible(scoped, global)
	if !equal(sorted(got), []string{"u2", "u3"}) {
		t.Fatalf("got %v, want [u2 u3]", got)
	}
}

func TestEffectiveEligibleScopedReaffirmsGlobal(t *testing.T) {
	global := []EligibleUser{eligible("u1", true)}
	scoped := []EligibleUser{eligible("u1", true)}

	got := EffectiveEligible(scoped, global)
	if !equal(got, []string{"u1"}) {
		t.Fatalf("got %v, want [u1] exactly once", got)
	}
}

func TestEffectiveEligibleInactiveScopedWithoutGlobal(t *testing.T) {
	got := EffectiveEligible([]EligibleUser{eligible("u1", false)}, nil)
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestResolveManagerScopedWins(t *testing.T) {
	scoped := []ManagerMapping{mapping("boss-period", true)}
	global := []ManagerMapping{mapping("boss-global", true)}

	managerID, err := ResolveManagerFrom(scoped, global)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if managerID != "boss-period" {
		t.Fatalf("got %s, want boss-period", managerID)
	}
}

func TestResolveManagerFallsBackToGlobal(t *testing.T) {
	// The scoped rows exist but none is active, so the global scope decides.
	scoped := []ManagerMapping{mapping("old-boss", false)}
	global := []ManagerMapping{mapping("boss-global", true)}

	managerID, err := ResolveManagerFrom(scoped, global)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if managerID != "boss-global" {
		t.Fatalf("got %s, want boss-global", managerID)
	}
}

func TestResolveManagerAmbiguousScope(t *testing.T) {
	scoped := []ManagerMapping{mapping("boss-a", true), mapping("boss-b", true)}
	global := []ManagerMapping{mapping("boss-global", true)}

	if _, err := ResolveManagerFrom(scoped, global); !errors.Is(err, ErrAmbiguousMapping) {
		t.Fatalf("want ErrAmbiguousMapping, got %v", err)
	}
}

func TestResolveManagerAmbiguousGlobalNotMaskedByEmptyScope(t *testing.T) {
	global := []ManagerMapping{mapping("boss-a", true), mapping("boss-b", true)}

	if _, err := ResolveManagerFrom(nil, global); !errors.Is(err, ErrAmbiguousMapping) {
		t.Fatalf("want ErrAmbiguousMapping, got %v", err)
	}
}

func TestResolveManagerNone(t *testing.T) {
	if _, err := ResolveManagerFrom(nil, []ManagerMapping{mapping("ex-boss", false)}); !errors.Is(err, ErrNoManager) {
		t.Fatalf("want ErrNoManager, got %v", err)
	}
}
