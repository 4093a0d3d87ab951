package service

import (
	"errors"
	"fmt"
)

type RejectCode string

const (
	RejectFeatureDisabled   RejectCode = "feature_disabled"
	RejectSetupIncomplete   RejectCode = "setup_incomplete"
	RejectSetupComplete     RejectCode = "setup_already_complete"
	RejectInvalidInterval   RejectCode = "invalid_interval"
	RejectInvalidInput      RejectCode = "invalid_input"
	RejectTeamNotFound      RejectCode = "team_not_found"
	RejectAlreadyHasTeam    RejectCode = "already_has_team"
	RejectNoTeam            RejectCode = "no_team"
	RejectTeamTaken         RejectCode = "team_taken"
	RejectOfferUnavailable  RejectCode = "offer_unavailable"
	RejectAdvanceAbandoned  RejectCode = "advance_abandoned"
	RejectConcurrentAdvance RejectCode = "concurrent_advance"
)

// Rejection is a precondition failure. It carries a message fit for the
// caller and is returned before any state changes.
type Rejection struct {
	Code    RejectCode
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

func reject(code RejectCode, format string, args ...any) *Rejection {
	return &Rejection{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsRejection reports whether err is a Rejection, unwrapping as needed.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func IsRejected(err error, code RejectCode) bool {
	r, ok := AsRejection(err)
	return ok && r.Code == code
}
