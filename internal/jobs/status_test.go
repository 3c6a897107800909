package jobs

import (
	"strings"
	"testing"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusQueued, StatusRunning, StatusSucceeded, StatusFailed} {
		if !s.Valid() {
			t.Errorf("%s not valid", s)
		}
	}
	if Status("cancelled").Valid() {
		t.Error("unknown status accepted")
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusQueued.Terminal() || StatusRunning.Terminal() {
		t.Error("active statuses reported terminal")
	}
	if !StatusSucceeded.Terminal() || !StatusFailed.Terminal() {
		t.Error("terminal statuses not reported terminal")
	}
}

func TestTransition(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusQueued, StatusRunning},
		{StatusRunning, StatusSucceeded},
		{StatusRunning, StatusFailed},
	}
	for _, tt := range legal {
		if err := Transition(tt.from, tt.to); err != nil {
			t.Errorf("Transition(%s, %s): %v", tt.from, tt.to, err)
		}
	}

	illegal := []struct{ from, to Status }{
		{StatusQueued, StatusSucceeded},
		{StatusQueued, StatusFailed},
		{StatusRunning, StatusQueued},
		{StatusSucceeded, StatusRunning},
		{StatusFailed, StatusQueued},
		{StatusSucceeded, StatusFailed},
	}
	for _, tt := range illegal {
		err := Transition(tt.from, tt.to)
		if err == nil {
			t.Errorf("Transition(%s, %s) allowed", tt.from, tt.to)
			continue
		}
		if !strings.Contains(err.Error(), "illegal transition") {
			t.Errorf("Transition(%s, %s) error = %v", tt.from, tt.to, err)
		}
	}
}

func TestTransition_UnknownStatus(t *testing.T) {
	if err := Transition(Status("limbo"), StatusRunning); err == nil {
		t.Error("unknown from-status accepted")
	}
	if err := Transition(StatusQueued, Status("limbo")); err == nil {
		t.Error("unknown to-status accepted")
	}
}
