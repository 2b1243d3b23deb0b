package pkg

import (
	"errors"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"
)

var (
	errEmptyULID   = errors.New("ULID string cannot be empty")
	errInvalidULID = errors.New("invalid ULID format")
)

// NewID gera um ULID monotonico, seguro para uso concorrente.
func NewID() ulid.ULID {
	return ulid.Make()
}

func ParseULID(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ulid.ULID{}, errEmptyULID
	}
	parsed, err := ulid.Parse(value)
	if err != nil {
		return ulid.ULID{}, errInvalidULID
	}
	return parsed, nil
}

// ParseULIDPtr aceita nil ou string vazia como ausencia de valor.
func ParseULIDPtr(value *string) (*ulid.ULID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := ParseULID(*value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func ParseULIDList(values []string) ([]ulid.ULID, error) {
	out := make([]ulid.ULID, 0, len(values))
	for _, v := range values {
		id, err := ParseULID(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func ULIDPtrToString(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func StringToULIDPtr(value *string) *ulid.ULID {
	id, err := ParseULIDPtr(value)
	if err != nil {
		return nil
	}
	return id
}

func ParseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
