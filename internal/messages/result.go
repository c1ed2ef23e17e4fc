package messages

import "fmt"

// Result is the shared section of every epoch result message. Concrete
// result types embed it alongside their own payload fields.
type Result struct {
	Base
	EpochNumber          int64    `json:"EpochNumber"`
	TriggeringMessageIDs []string `json:"TriggeringMessageIds"`
	LastUpdatedInEpoch   *int64   `json:"LastUpdatedInEpoch,omitempty"`
	Warnings             []string `json:"Warnings,omitempty"`
}

// ValidateResult checks the envelope and the result section.
func (r *Result) ValidateResult() error {
	if err := r.Base.validate(); err != nil {
		return err
	}
	if r.EpochNumber < 1 {
		return fmt.Errorf("result epoch number must be at least 1, got %d", r.EpochNumber)
	}
	if r.LastUpdatedInEpoch != nil && *r.LastUpdatedInEpoch > r.EpochNumber {
		return fmt.Errorf("last updated epoch %d is ahead of epoch %d", *r.LastUpdatedInEpoch, r.EpochNumber)
	}
	return nil
}
