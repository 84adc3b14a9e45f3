package lot

import "fmt"

// AnalysisOutcome decides the state a lot moves to once its lab report is
// registered. The methanol check runs first: a measurement above the limit
// blocks the lot no matter what the laboratory concluded. Within the limit
// the laboratory verdict decides between approval and rejection.
func AnalysisOutcome(methanolPPM, limitPPM int64, labApproved bool) (State, string) {
	if methanolPPM > limitPPM {
		reason := fmt.Sprintf("methanol level %d ppm exceeds safety limit of %d ppm", methanolPPM, limitPPM)
		return StateBlocked, reason
	}
	if labApproved {
		return StateApproved, ""
	}
	return StateRejected, ""
}

// CanRegisterReport reports whether a lot in this state accepts a lab report.
func CanRegisterReport(s State) bool {
	return s == StateCreated || s == StateUnderAnalysis
}

// CanStartAnalysis reports whether a lot can be handed to the laboratory.
func CanStartAnalysis(s State) bool {
	return s == StateCreated
}

// CanDistribute reports whether a lot may leave for distribution.
func CanDistribute(s State) bool {
	return s == StateApproved
}

// CheckBlockable validates an inspector block request against the current
// state. Re-blocking is reported separately so callers can treat it as an
// idempotency signal rather than a hard failure.
func CheckBlockable(s State) error {
	switch {
	case s == StateBlocked:
		return ErrAlreadyBlocked
	case s == StateDistributed:
		return fmt.Errorf("%w: distributed lot cannot be blocked", ErrInvalidState)
	case s == StateRejected:
		return fmt.Errorf("%w: rejected lot is terminal", ErrInvalidState)
	default:
		return nil
	}
}

// ValidateMeasurement rejects measurements the engine must never persist.
func ValidateMeasurement(methanolPPM int64) error {
	if methanolPPM < 0 {
		return fmt.Errorf("%w: methanol measurement must be non-negative, got %d", ErrInvalidInput, methanolPPM)
	}
	return nil
}
