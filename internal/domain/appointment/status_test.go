package appointment

import (
	"testing"
	"time"

	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/models"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusInProgress},
		{StatusConfirmed, StatusCancelled},
		{StatusInProgress, StatusCompleted},
	}
	for _, tr := range allowed {
		if err := CanTransition(tr.from, tr.to); err != nil {
			t.Fatalf("%s -> %s should be allowed: %v", tr.from, tr.to, err)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusInProgress},
		{StatusInProgress, StatusCancelled},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusConfirmed},
		{StatusCancelled, StatusConfirmed},
		{StatusCancelled, StatusPending},
	}
	for _, tr := range denied {
		err := CanTransition(tr.from, tr.to)
		if !httperr.IsBusiness(err, httperr.CodeInvalidState) {
			t.Fatalf("%s -> %s should be rejected with invalid_state, got %v", tr.from, tr.to, err)
		}
	}
}

func TestDomainActions_SetTimestamps(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	ap := &models.Appointment{Status: string(StatusPending)}
	if err := Confirm(ap, now); err != nil {
		t.Fatal(err)
	}
	if ap.Status != string(StatusConfirmed) || ap.ConfirmedAt == nil {
		t.Fatalf("confirm did not stamp: %+v", ap)
	}

	if err := Start(ap, now); err != nil {
		t.Fatal(err)
	}
	if ap.Status != string(StatusInProgress) || ap.StartedAt == nil {
		t.Fatalf("start did not stamp: %+v", ap)
	}

	if err := Complete(ap, now); err != nil {
		t.Fatal(err)
	}
	if ap.Status != string(StatusCompleted) || ap.CompletedAt == nil {
		t.Fatalf("complete did not stamp: %+v", ap)
	}

	if err := Cancel(ap, now); !httperr.IsBusiness(err, httperr.CodeInvalidState) {
		t.Fatalf("cancel after completion should fail, got %v", err)
	}
}

func TestRate(t *testing.T) {
	ap := &models.Appointment{Status: string(StatusConfirmed)}
	if err := Rate(ap, 5, "great"); !httperr.IsBusiness(err, httperr.CodeInvalidState) {
		t.Fatalf("rating a non-completed appointment should fail, got %v", err)
	}

	ap.Status = string(StatusCompleted)
	if err := Rate(ap, 0, ""); !httperr.IsBusiness(err, "invalid_rating") {
		t.Fatalf("rating 0 should fail, got %v", err)
	}
	if err := Rate(ap, 6, ""); !httperr.IsBusiness(err, "invalid_rating") {
		t.Fatalf("rating 6 should fail, got %v", err)
	}

	if err := Rate(ap, 4, "solid fade"); err != nil {
		t.Fatal(err)
	}
	if ap.Rating == nil || *ap.Rating != 4 || ap.Review != "solid fade" {
		t.Fatalf("rating not stored: %+v", ap)
	}
}

func TestBlockingStatuses(t *testing.T) {
	blocking := BlockingStatuses()

	want := map[string]bool{
		"pending": true, "confirmed": true, "in_progress": true,
	}
	if len(blocking) != len(want) {
		t.Fatalf("unexpected blocking set: %v", blocking)
	}
	for _, s := range blocking {
		if !want[s] {
			t.Fatalf("unexpected blocking status %q", s)
		}
	}
}
