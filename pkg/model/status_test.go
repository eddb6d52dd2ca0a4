package model

import (
	"testing"
	"time"
)

func TestIsForwardTransition(t *testing.T) {
	tests := []struct {
		name string
		kind string
		from string
		to   string
		want bool
	}{
		{"room pending to confirmed", KindRoom, StatusPending, StatusConfirmed, true},
		{"room pending to checked-in skips a step", KindRoom, StatusPending, StatusCheckedIn, true},
		{"room confirmed back to pending", KindRoom, StatusConfirmed, StatusPending, false},
		{"room same status", KindRoom, StatusConfirmed, StatusConfirmed, false},
		{"room pending to cancelled", KindRoom, StatusPending, StatusCancelled, true},
		{"room uses vehicle status", KindRoom, StatusConfirmed, StatusActive, false},
		{"room checked-out is terminal", KindRoom, StatusCheckedOut, StatusCancelled, false},
		{"vehicle confirmed to active", KindVehicle, StatusConfirmed, StatusActive, true},
		{"vehicle active to completed", KindVehicle, StatusActive, StatusCompleted, true},
		{"vehicle uses room status", KindVehicle, StatusConfirmed, StatusCheckedIn, false},
		{"vehicle completed is terminal", KindVehicle, StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", KindVehicle, StatusCancelled, StatusPending, false},
		{"unknown kind", "boat", StatusPending, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsForwardTransition(tt.kind, tt.from, tt.to); got != tt.want {
				t.Errorf("IsForwardTransition(%s, %s, %s) = %v, want %v", tt.kind, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	tests := []struct {
		kind   string
		status string
		want   bool
	}{
		{KindRoom, StatusCheckedIn, true},
		{KindRoom, StatusActive, false},
		{KindVehicle, StatusActive, true},
		{KindVehicle, StatusCheckedOut, false},
		{KindVehicle, StatusCancelled, true},
		{KindRoom, "archived", false},
	}

	for _, tt := range tests {
		if got := IsValidStatus(tt.kind, tt.status); got != tt.want {
			t.Errorf("IsValidStatus(%s, %s) = %v, want %v", tt.kind, tt.status, got, tt.want)
		}
	}
}

func TestReservationPeriod(t *testing.T) {
	if ReservationPeriod(KindRoom) != 12*time.Hour {
		t.Errorf("room period = %s, want 12h", ReservationPeriod(KindRoom))
	}
	if ReservationPeriod(KindVehicle) != 24*time.Hour {
		t.Errorf("vehicle period = %s, want 24h", ReservationPeriod(KindVehicle))
	}
}

func TestCaller(t *testing.T) {
	tests := []struct {
		caller     Caller
		privileged bool
		admin      bool
	}{
		{Caller{ID: "u1", Role: RoleCustomer}, false, false},
		{Caller{ID: "u2", Role: RoleStaff}, true, false},
		{Caller{ID: "u3", Role: RoleAdmin}, true, true},
		{Caller{}, false, false},
	}

	for _, tt := range tests {
		if tt.caller.IsPrivileged() != tt.privileged {
			t.Errorf("%+v IsPrivileged() = %v", tt.caller, tt.caller.IsPrivileged())
		}
		if tt.caller.IsAdmin() != tt.admin {
			t.Errorf("%+v IsAdmin() = %v", tt.caller, tt.caller.IsAdmin())
		}
	}
}

func TestReservation_IsOwnedBy(t *testing.T) {
	owner := "user-1"
	r := &Reservation{OwnerID: &owner}
	walkIn := &Reservation{}

	if !r.IsOwnedBy("user-1") {
		t.Error("owner should own the reservation")
	}
	if r.IsOwnedBy("user-2") {
		t.Error("another caller should not own the reservation")
	}
	if walkIn.IsOwnedBy("user-1") || walkIn.IsOwnedBy("") {
		t.Error("walk-in reservation has no owner")
	}
}

func TestSlotLockID(t *testing.T) {
	if got := SlotLockID("665f1c0a"); got != "unit_lock_665f1c0a" {
		t.Errorf("SlotLockID() = %s", got)
	}
}
