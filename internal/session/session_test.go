package session

import (
	"testing"

	"github.com/evolvenxt/tarschat/internal/models"
)

func TestSubmit_EmptyDraftIsNoop(t *testing.T) {
	for _, draft := range []string{"", "   ", "\n\t "} {
		s := New(models.DatasetNone)
		s.SetDraft(draft)

		if _, ok := s.Submit(); ok {
			t.Errorf("Submit() accepted draft %q", draft)
		}
		if s.Busy() {
			t.Errorf("draft %q left the session busy", draft)
		}
		if s.Draft() != draft {
			t.Errorf("rejected submit changed the draft to %q", s.Draft())
		}
	}
}

func TestSubmit_Accepts(t *testing.T) {
	s := New(models.DatasetDS1)
	s.SetDraft("What is DS-1 revenue?")

	ticket, ok := s.Submit()
	if !ok {
		t.Fatal("Submit() rejected a valid draft")
	}
	if ticket.Text != "What is DS-1 revenue?" {
		t.Errorf("ticket.Text = %q", ticket.Text)
	}
	if ticket.Dataset != models.DatasetDS1 {
		t.Errorf("ticket.Dataset = %q, want DS-1", ticket.Dataset)
	}
	if ticket.Generation != 1 {
		t.Errorf("ticket.Generation = %d, want 1", ticket.Generation)
	}
	if s.Draft() != "" {
		t.Error("draft should be cleared after submit")
	}
	if !s.Busy() {
		t.Error("session should be busy after submit")
	}
}

func TestSubmit_WhileBusyIsNoop(t *testing.T) {
	s := New(models.DatasetNone)
	s.SetDraft("first")
	if _, ok := s.Submit(); !ok {
		t.Fatal("first submit rejected")
	}

	s.SetDraft("second")
	if _, ok := s.Submit(); ok {
		t.Error("Submit() accepted while busy")
	}
	if s.Draft() != "second" {
		t.Errorf("draft = %q, want it kept for later", s.Draft())
	}
	if s.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", s.Generation())
	}
}

func TestFinish_ClearsBusy(t *testing.T) {
	s := New(models.DatasetNone)
	s.SetDraft("q")
	ticket, _ := s.Submit()

	if !s.Finish(ticket.Generation) {
		t.Error("Finish() of the current generation should report current")
	}
	if s.Busy() {
		t.Error("session should be idle after Finish")
	}

	s.SetDraft("again")
	if _, ok := s.Submit(); !ok {
		t.Error("Submit() should be accepted once idle")
	}
}

func TestBegin_SupersedesInFlight(t *testing.T) {
	s := New(models.DatasetNone)
	s.SetDraft("q")
	first, _ := s.Submit()

	second := s.Begin("Option A")
	third := s.Begin("Option B")

	if second.Generation <= first.Generation || third.Generation <= second.Generation {
		t.Fatalf("generations not increasing: %d %d %d", first.Generation, second.Generation, third.Generation)
	}

	if s.Finish(first.Generation) {
		t.Error("stale generation reported as current")
	}
	if s.Finish(second.Generation) {
		t.Error("stale generation reported as current")
	}
	if !s.Busy() {
		t.Error("session must stay busy while the newest request is in flight")
	}

	if !s.Finish(third.Generation) {
		t.Error("newest generation should be current")
	}
	if s.Busy() {
		t.Error("session should be idle once the newest request finished")
	}
}

func TestBegin_KeepsDraft(t *testing.T) {
	s := New(models.DatasetNone)
	s.SetDraft("half typed")
	s.Begin("Option")

	if s.Draft() != "half typed" {
		t.Errorf("Draft() = %q, want draft untouched", s.Draft())
	}
}

func TestSelectDataset(t *testing.T) {
	s := New(models.DatasetNone)
	s.SelectDataset(models.DatasetDS2)

	if s.Dataset() != models.DatasetDS2 {
		t.Errorf("Dataset() = %q, want DS-2", s.Dataset())
	}

	ticket := s.Begin("x")
	if ticket.Dataset != models.DatasetDS2 {
		t.Errorf("ticket.Dataset = %q, want DS-2", ticket.Dataset)
	}
}
