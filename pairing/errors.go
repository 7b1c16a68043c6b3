package pairing

import "errors"

// Precondition failures. All of them leave the board untouched.
var (
	ErrInvalidGameNo        = errors.New("game number must be 1..8")
	ErrNoScenario           = errors.New("select a scenario first")
	ErrUnknownScenario      = errors.New("unknown scenario")
	ErrInvalidPlayer        = errors.New("player id must be a positive integer")
	ErrUnresolvedPlayer     = errors.New("invalid player id (roster snapshot mismatch)")
	ErrInvalidArmy          = errors.New("army index must be a non-negative integer")
	ErrInvalidLayout        = errors.New("layout number must be a positive integer")
	ErrUnknownLayout        = errors.New("layout number is not available for this scenario")
	ErrLayoutTaken          = errors.New("this layout number is already taken, choose another")
	ErrConfirmationRequired = errors.New("changing scenario will clear all selected layout numbers")
)
