package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/options"
)

// EnableHint tells an operator how to turn the capability on.
const EnableHint = "run: magiclink toggle on"

// CapabilityService owns the flag that says whether magic login redemption
// is switched on for the site. An absent flag means off.
type CapabilityService struct {
	options options.Repository
}

func NewCapabilityService(opts options.Repository) *CapabilityService {
	return &CapabilityService{options: opts}
}

// Enabled reports the current state of the flag.
func (s *CapabilityService) Enabled(ctx context.Context) (bool, error) {
	v, err := s.options.Get(ctx, common.CapabilityOptionName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: read capability flag: %w", common.ErrStorageFault, err)
	}
	return v == "1", nil
}

// Require returns common.ErrCapabilityNotActive, with the enabling
// instruction, unless the flag is on.
func (s *CapabilityService) Require(ctx context.Context) error {
	on, err := s.Enabled(ctx)
	if err != nil {
		return err
	}
	if !on {
		return fmt.Errorf("%w (%s)", common.ErrCapabilityNotActive, EnableHint)
	}
	return nil
}

// Set parses raw as a toggle value and stores it. A malformed value leaves
// the flag untouched.
func (s *CapabilityService) Set(ctx context.Context, raw string) (bool, error) {
	on, err := ParseToggle(raw)
	if err != nil {
		return false, err
	}

	v := "0"
	if on {
		v = "1"
	}
	if err := s.options.Set(ctx, common.CapabilityOptionName, v); err != nil {
		return false, fmt.Errorf("%w: write capability flag: %w", common.ErrStorageFault, err)
	}
	return on, nil
}

// ParseToggle accepts on/off, true/false, yes/no and 1/0, case-insensitively.
func ParseToggle(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q (want on or off)", common.ErrInvalidToggleValue, raw)
	}
}
