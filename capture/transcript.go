// Package capture turns spoken attendee details into attendee rows.
package capture

import (
	"errors"
	"strings"

	"github.com/AVVKavvk/oakmont-voip-crm/models"
)

// FormatHint is shown to the user when a transcript cannot be split.
const FormatHint = `Say "Name, Phone" like "Michael, 0412345678"`

var ErrBadTranscript = errors.New("transcript is not in \"Name, Phone\" form")

// Parse splits a transcript on its first comma into a name and a phone
// number. Surrounding whitespace is trimmed, case is kept.
func Parse(transcript, event string) (models.Attendee, error) {
	name, phone, ok := strings.Cut(transcript, ",")
	if !ok {
		return models.Attendee{}, ErrBadTranscript
	}
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return models.Attendee{}, ErrBadTranscript
	}
	return models.Attendee{Name: name, PhoneNumber: phone, Event: event}, nil
}
