// Package schema maps wire payloads onto entity shapes and reports
// structural validation failures as field-level message collections.
// Handlers never see a payload that did not pass through it.
package schema

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Length limits count characters, not bytes.
const (
	maxTitleLength   = 200
	maxMembersLength = 25
)

// FieldErrors collects validation messages per payload field. It is
// returned verbatim as a Bad-Request body.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, message string) {
	e[field] = append(e[field], message)
}

// FormRef is one element of the assigned_to_forms payload list.
type FormRef struct {
	FormID int `json:"form_id"`
}

// GroupPayload is the validated shape of a group create/update body.
// Optional fields are pointers so update can tell an absent field from
// a zero value and leave it untouched.
type GroupPayload struct {
	Title           string
	OwnerID         int
	Members         *string
	Date            *time.Time
	AssignedToForms []FormRef
}

// LoadGroup validates a raw JSON body against the group schema. It
// returns either a payload or a non-empty error collection, never both.
func LoadGroup(body []byte) (*GroupPayload, FieldErrors) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, FieldErrors{"_schema": {"Invalid input type."}}
	}

	errs := FieldErrors{}
	payload := &GroupPayload{}

	if value, ok := raw["title"]; ok {
		var title string
		switch {
		case json.Unmarshal(value, &title) != nil:
			errs.add("title", "Not a valid string.")
		case title == "":
			errs.add("title", "Shorter than minimum length 1.")
		case utf8.RuneCountInString(title) > maxTitleLength:
			errs.add("title", fmt.Sprintf("Longer than maximum length %d.", maxTitleLength))
		default:
			payload.Title = title
		}
	} else {
		errs.add("title", "Missing data for required field.")
	}

	if value, ok := raw["owner_id"]; ok {
		var ownerID int
		if json.Unmarshal(value, &ownerID) != nil {
			errs.add("owner_id", "Not a valid integer.")
		} else {
			payload.OwnerID = ownerID
		}
	} else {
		errs.add("owner_id", "Missing data for required field.")
	}

	if value, ok := raw["members"]; ok {
		var members string
		switch {
		case json.Unmarshal(value, &members) != nil:
			errs.add("members", "Not a valid string.")
		case utf8.RuneCountInString(members) > maxMembersLength:
			errs.add("members", fmt.Sprintf("Longer than maximum length %d.", maxMembersLength))
		default:
			payload.Members = &members
		}
	}

	if value, ok := raw["date"]; ok {
		var date string
		if json.Unmarshal(value, &date) != nil {
			errs.add("date", "Not a valid datetime.")
		} else if parsed, err := time.Parse(time.RFC3339, date); err != nil {
			errs.add("date", "Not a valid datetime.")
		} else {
			payload.Date = &parsed
		}
	}

	if value, ok := raw["assigned_to_forms"]; ok {
		var refs []FormRef
		if json.Unmarshal(value, &refs) != nil {
			errs.add("assigned_to_forms", "Not a valid list of form references.")
		} else {
			payload.AssignedToForms = refs
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return payload, nil
}
