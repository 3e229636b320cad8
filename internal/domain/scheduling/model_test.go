package scheduling

import "testing"

func TestCanTransition(t *testing.T) {
	statuses := []AppointmentStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
	allowed := map[[2]AppointmentStatus]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]AppointmentStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if StatusPending.Terminal() || StatusConfirmed.Terminal() {
		t.Error("pending and confirmed are not terminal")
	}
	if !StatusCancelled.Terminal() || !StatusCompleted.Terminal() {
		t.Error("cancelled and completed are terminal")
	}
}

func TestOccupies(t *testing.T) {
	if !StatusPending.Occupies() || !StatusConfirmed.Occupies() {
		t.Error("pending and confirmed hold their slot")
	}
	if StatusCancelled.Occupies() || StatusCompleted.Occupies() {
		t.Error("cancelled and completed free their slot")
	}
}

func TestTransitionRoleGates(t *testing.T) {
	cases := []struct {
		to   AppointmentStatus
		role string
		want bool
	}{
		{StatusConfirmed, RoleDoctor, true},
		{StatusConfirmed, RoleAdmin, true},
		{StatusConfirmed, RolePatient, false},
		{StatusCompleted, RoleDoctor, true},
		{StatusCompleted, RolePatient, false},
		{StatusCancelled, RolePatient, true},
		{StatusCancelled, RoleDoctor, true},
		{StatusCancelled, RoleAdmin, true},
		{StatusCancelled, "receptionist", false},
	}
	for _, tc := range cases {
		if got := transitionAllowed(tc.to, tc.role); got != tc.want {
			t.Errorf("transitionAllowed(%s, %s) = %v, want %v", tc.to, tc.role, got, tc.want)
		}
	}
}

func TestClockHelpers(t *testing.T) {
	m, err := ParseClock("09:30")
	if err != nil || m != 570 {
		t.Fatalf("ParseClock(09:30) = %d, %v", m, err)
	}
	if got := FormatClock(570); got != "09:30" {
		t.Fatalf("FormatClock(570) = %s", got)
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Error("ParseClock should reject 25:00")
	}
	if !OnGrid("14:00") || !OnGrid("14:30") {
		t.Error("half-hour marks are on the grid")
	}
	if OnGrid("14:15") || OnGrid("nope") {
		t.Error("off-grid times should be rejected")
	}
}
