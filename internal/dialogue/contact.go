package dialogue

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Contact is a single name/phone pair.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// SupportContacts is the support-department shape: day shift is a plain phone
// string, night shift is a named contact.
type SupportContacts struct {
	Dia   string  `json:"dia"`
	Noite Contact `json:"noite"`
}

// ContactInfo is the tagged form of the backend's untagged contact payload.
// The wire carries either an array of contacts (sales) or a single support
// object, with no discriminant; the variant is decided once, on decode, so
// nothing downstream has to branch on raw JSON shape.
type ContactInfo struct {
	Sales   []Contact
	Support *SupportContacts
}

func (c *ContactInfo) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '[':
		return json.Unmarshal(trimmed, &c.Sales)
	case '{':
		c.Support = &SupportContacts{}
		return json.Unmarshal(trimmed, c.Support)
	}
	return errors.New("contact_info: expected array or object")
}

func (c ContactInfo) MarshalJSON() ([]byte, error) {
	if c.Support != nil {
		return json.Marshal(c.Support)
	}
	return json.Marshal(c.Sales)
}
