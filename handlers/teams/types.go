package teams

import (
	"github.com/gin-gonic/gin"
)

// Constants for error and status messages
const (
	ErrAlreadyCaptain   = "You are currently registered to a team you created. Delete that team before creating or joining another."
	ErrAlreadyMember    = "You are currently registered to a team. Leave that team before creating or joining another."
	ErrNotAMember       = "You are not yet registered to a team. Create a new team or join an existing one."
	ErrCaptainLeave     = "You cannot leave a team you have created. Deleting the team removes all members."
	ErrNotACaptain      = "Team deletion is only available to users who have created teams."
	ErrUnknownToken     = "Failed to find a matching team. Please double-check the token and retry."
	ErrTeamNameTooLong  = "Proposed team name is too long"
	ErrFlowNotFound     = "No such flow in progress"
	ErrFlowExpired      = "Request has timed out. Please try again."
	ErrFlowWrongStep    = "Flow is not awaiting this step"
	ErrStoreUnavailable = "Something went wrong. Please try again."

	MsgCreationDeclined = "Team creation terminated by user."
	MsgDeletionDeclined = "Team deletion terminated by user."
)

// maxTeamNameLength bounds proposed team names.
const maxTeamNameLength = 30

// NameRequest carries the proposed team name for a create flow.
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ConfirmRequest resolves a confirmation step.
type ConfirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

// JoinRequest carries the join token.
type JoinRequest struct {
	Token string `json:"token" binding:"required"`
}

// FlowResponse describes a suspended flow to the gateway.
type FlowResponse struct {
	FlowID    string `json:"flow_id"`
	State     string `json:"state"`
	ExpiresAt string `json:"expires_at"`
	Prompt    string `json:"prompt"`
}

// MembershipResponse is the resolved membership of the caller.
type MembershipResponse struct {
	TeamID    uint   `json:"team_id"`
	TeamName  string `json:"team_name"`
	IsCaptain bool   `json:"is_captain"`
}

// CreatedResponse reports a successful team creation.
type CreatedResponse struct {
	TeamID  uint   `json:"team_id"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
