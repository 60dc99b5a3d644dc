package board

import (
	"testing"
	"time"

	"github.com/Makepad-fr/tada-tasks/internal/model"
)

func TestFormZeroValue(t *testing.T) {
	t.Parallel()

	var f Form
	task := f.Task()
	if task.Text != "" || task.Expire != "" || task.ID != nil || task.Done {
		t.Errorf("Expected empty task, got %+v", task)
	}
}

func TestSetExpireUsesLocalDay(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	var f Form
	f.SetExpire(time.Date(2025, time.July, 1, 0, 5, 0, 0, tokyo))
	if got := f.ExpireText(); got != "2025-07-01" {
		t.Errorf("Expected 2025-07-01, got %s", got)
	}
}

func TestSetExpireText(t *testing.T) {
	t.Parallel()

	var f Form
	for _, in := range []string{"2025-07-01", "2025/07/01", " 2025-07-01 "} {
		if err := f.SetExpireText(in); err != nil {
			t.Fatalf("SetExpireText(%q) failed: %v", in, err)
		}
		if got := f.ExpireText(); got != "2025-07-01" {
			t.Errorf("SetExpireText(%q) = %s", in, got)
		}
	}

	if err := f.SetExpireText("07/01/2025"); err == nil {
		t.Error("Expected error for US-style input")
	}
	if f.ExpireText() != "2025-07-01" {
		t.Error("Invalid input must not change the date")
	}

	if err := f.SetExpireText(""); err != nil {
		t.Fatalf("Clearing failed: %v", err)
	}
	if f.Expire != nil {
		t.Error("Expected empty input to clear the date")
	}
}

func TestShiftExpire(t *testing.T) {
	t.Parallel()

	today := model.Date{Year: 2025, Month: time.June, Day: 30}
	var f Form
	f.ShiftExpire(1, today)
	if got := f.ExpireText(); got != "2025-07-01" {
		t.Errorf("Expected 2025-07-01, got %s", got)
	}
	f.ShiftExpire(-2, today)
	if got := f.ExpireText(); got != "2025-06-29" {
		t.Errorf("Expected 2025-06-29, got %s", got)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	f := Form{Text: "x"}
	f.SetExpire(time.Now())
	f.Reset()
	if f.Text != "" || f.Expire != nil {
		t.Errorf("Expected zero form, got %+v", f)
	}
}
