package ailedger

import "errors"

var (
	// Policy errors
	ErrPolicyNotFound          = errors.New("ai policy not found")
	ErrNoActivePolicy          = errors.New("organization has no active ai policy")
	ErrInvalidPolicyTransition = errors.New("ai policy cannot move to the requested status")

	// Run errors
	ErrRunNotFound   = errors.New("ai run not found")
	ErrRunNotRunning = errors.New("ai run is no longer running")

	// Decision errors
	ErrDecisionNotFound        = errors.New("ai decision not found")
	ErrDecisionAlreadyReviewed = errors.New("ai decision has already been reviewed")
	ErrDecisionNotApproved     = errors.New("ai decision has not been reviewed and approved")
	ErrDecisionNotPromotable   = errors.New("only monthly_summary decisions can back an override")
	ErrDecisionAlreadyPromoted = errors.New("ai decision has already been promoted")
	ErrInvalidDecisionPayload  = errors.New("ai decision payload is invalid")
)
