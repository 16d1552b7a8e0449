package session

import "fmt"

// Mode selects which surfaces are shown.
type Mode int

const (
	View Mode = iota
	Edit
)

func (m Mode) String() string {
	if m == Edit {
		return "edit"
	}
	return "view"
}

// ParseMode accepts "view" or "edit".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "view":
		return View, nil
	case "edit":
		return Edit, nil
	}
	return View, fmt.Errorf("unknown mode: %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
