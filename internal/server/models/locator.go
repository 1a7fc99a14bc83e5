package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/go-playground/validator/v10"
)

// LocatorKind tells how a Locator should be looked up.
type LocatorKind int

const (
	LocatorLogin LocatorKind = iota
	LocatorEmail
	LocatorID
)

func (k LocatorKind) String() string {
	switch k {
	case LocatorEmail:
		return "email"
	case LocatorID:
		return "id"
	default:
		return "login"
	}
}

// Locator identifies an account by email, login or numeric id.
// Value always holds the raw text; ID is set only for LocatorID.
type Locator struct {
	Kind  LocatorKind
	Value string
	ID    int64
}

var validate = validator.New()

// ParseLocator classifies raw operator input. A valid email address becomes
// LocatorEmail, an all-digit string LocatorID, anything else LocatorLogin.
func ParseLocator(raw string) (Locator, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Locator{}, fmt.Errorf("%w: empty", common.ErrInvalidLocator)
	}

	if validate.Var(s, "required,email") == nil {
		return Locator{Kind: LocatorEmail, Value: s}, nil
	}

	if isDigits(s) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return Locator{Kind: LocatorID, Value: s, ID: id}, nil
		}
	}

	return Locator{Kind: LocatorLogin, Value: s}, nil
}

func (l Locator) String() string {
	return l.Kind.String() + ":" + l.Value
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
