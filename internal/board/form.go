package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/Makepad-fr/tada-tasks/internal/model"
)

// pickerLayout is the slash form shown by the date field.
const pickerLayout = "2006/01/02"

// Form collects the fields of a task to create. The zero value is an
// untouched form: empty text and no due date.
type Form struct {
	Text   string
	Expire *model.Date
}

// SetExpire stores the calendar day of t as seen in t's location.
func (f *Form) SetExpire(t time.Time) {
	d := model.DateOf(t)
	f.Expire = &d
}

// SetExpireText accepts YYYY-MM-DD or YYYY/MM/DD. Empty input clears the date.
func (f *Form) SetExpireText(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		f.ClearExpire()
		return nil
	}
	for _, layout := range []string{model.DateLayout, pickerLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			f.SetExpire(t)
			return nil
		}
	}
	return fmt.Errorf("due date %q: want YYYY-MM-DD", s)
}

// ShiftExpire moves the due date by n days, starting from today when unset.
func (f *Form) ShiftExpire(n int, today model.Date) {
	d := today
	if f.Expire != nil {
		d = *f.Expire
	}
	d = d.AddDays(n)
	f.Expire = &d
}

func (f *Form) ClearExpire() { f.Expire = nil }

func (f *Form) Reset() { *f = Form{} }

// ExpireText is the wire form of the due date, or "".
func (f Form) ExpireText() string {
	if f.Expire == nil {
		return ""
	}
	return f.Expire.String()
}

// Task builds the task to submit; id and done stay unset.
func (f Form) Task() model.Task {
	return model.Task{Text: f.Text, Expire: f.ExpireText()}
}
