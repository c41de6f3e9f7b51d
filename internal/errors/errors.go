package errors

import (
	"encoding/json"
	"fmt"
)

// EntryNotFoundErr is raised when requested entry is missing in data source
type EntryNotFoundErr struct {
	target  string
	message string
}

func (e *EntryNotFoundErr) Error() string {
	return e.message
}

// MarshalJSON writes error as {"target": "...", "message": "..."}
func (e *EntryNotFoundErr) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Target  string `json:"target"`
		Message string `json:"message"`
	}{Target: e.target, Message: e.message})
}

// NewEntryNotFoundErr builds EntryNotFoundErr for target entity
func NewEntryNotFoundErr(target string, msg string) *EntryNotFoundErr {
	return &EntryNotFoundErr{target: target, message: msg}
}

// CustomerNotFound builds EntryNotFoundErr for customer with provided id
func CustomerNotFound(id int64) *EntryNotFoundErr {
	return NewEntryNotFoundErr("customer", fmt.Sprintf("customer with id %d doesn't exist", id))
}
