package criteria

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestApplicableTo(t *testing.T) {
	general := Criterion{Audience: AudienceManager, Active: true}
	leadership := Criterion{Audience: AudienceManager, LeadersOnly: true, Active: true}
	retired := Criterion{Audience: AudienceManager, Active: false}
	selfSection := Criterion{Audience: AudienceCollaborator, Active: true}

	if !general.ApplicableTo(false) || !general.ApplicableTo(true) {
		t.Fatal("general criteria apply to everyone")
	}
	if leadership.ApplicableTo(false) {
		t.Fatal("leadership criteria must not apply to non-leaders")
	}
	if !leadership.ApplicableTo(true) {
		t.Fatal("leadership criteria apply to leaders")
	}
	if retired.ApplicableTo(true) {
		t.Fatal("inactive criteria never apply")
	}
	if selfSection.ApplicableTo(true) {
		t.Fatal("collaborator sections are not manager-scored")
	}
}

func TestDefaultsShape(t *testing.T) {
	defaults := Defaults()
	if len(defaults) != 10 {
		t.Fatalf("expected 10 stock criteria, got %d", len(defaults))
	}

	leadersOnly := 0
	for _, c := range defaults {
		if c.Name == "" || c.Category == "" {
			t.Fatalf("criterion missing name or category: %+v", c)
		}
		if c.Audience != AudienceManager {
			t.Fatalf("stock catalog is manager-scored, got audience %q", c.Audience)
		}
		if !c.Weight.Equal(decimal.NewFromInt(1)) {
			t.Fatalf("stock weights are 1, got %s for %s", c.Weight, c.Name)
		}
		if !c.Active {
			t.Fatalf("stock criterion %s must start active", c.Name)
		}
		if c.LeadersOnly {
			leadersOnly++
		}
	}
	if leadersOnly != 2 {
		t.Fatalf("expected 2 leadership criteria, got %d", leadersOnly)
	}
}
