package enums

import "testing"

func TestParseAssignmentStatus(t *testing.T) {
	for _, raw := range []string{"pending", "assigned", "in_progress", "completed", "cancelled"} {
		got, err := ParseAssignmentStatus(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got.String() != raw {
			t.Fatalf("expected %q got %q", raw, got)
		}
	}
	if _, err := ParseAssignmentStatus("canceled"); err == nil {
		t.Fatal("expected american spelling to be rejected")
	}
}

func TestAssignmentStatusTerminal(t *testing.T) {
	terminal := map[AssignmentStatus]bool{
		AssignmentStatusPending:    false,
		AssignmentStatusAssigned:   false,
		AssignmentStatusInProgress: false,
		AssignmentStatusCompleted:  true,
		AssignmentStatusCancelled:  true,
	}
	for status, want := range terminal {
		if status.IsTerminal() != want {
			t.Fatalf("status %s terminal=%v want %v", status, status.IsTerminal(), want)
		}
	}
}

func TestAssignmentTypeAndWork(t *testing.T) {
	if _, err := ParseAssignmentType("office_user"); err != nil {
		t.Fatalf("parse office_user: %v", err)
	}
	if _, err := ParseAssignmentType("vendor"); err == nil {
		t.Fatal("expected unknown type to fail")
	}
	if !AssignmentTypeMedicine.UsesMedicineBookings() || AssignmentTypeCorporate.UsesMedicineBookings() {
		t.Fatal("unexpected booking source mapping")
	}
	if _, err := ParseAssignmentWork("both"); err != nil {
		t.Fatalf("parse both: %v", err)
	}
	if AssignmentWork("drop").IsValid() {
		t.Fatal("expected drop to be invalid")
	}
}

func TestActorRole(t *testing.T) {
	role, err := ParseActorRole("courier")
	if err != nil || role != ActorRoleCourier {
		t.Fatalf("unexpected parse result %v %v", role, err)
	}
	if ActorRoleAdmin.RequiresEntity() {
		t.Fatal("admin tokens are not entity scoped")
	}
	if !ActorRoleCorporate.RequiresEntity() {
		t.Fatal("corporate tokens must be entity scoped")
	}
}
