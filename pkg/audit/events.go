package audit

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolveEvent records an attempt to approve or reject a permission request
type ResolveEvent struct {
	ActorID   int
	RoomID    int
	RequestID int
	Group     string
	Operation string // "approve" or "reject"
	Success   bool
	// Reason is the failure kind, e.g. "already-processed" or "eligibility:tenure"
	Reason       string
	ErrorMessage string
}

func (e ResolveEvent) MessageID() string {
	return "resolve"
}

func (e ResolveEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("user %d %s request %d for group %s", e.ActorID, pastTense(e.Operation), e.RequestID, e.Group)
	}
	msg := fmt.Sprintf("user %d tried to %s request %d", e.ActorID, e.Operation, e.RequestID)
	if e.Group != "" {
		msg += " for group " + e.Group
	}
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func pastTense(operation string) string {
	if strings.HasSuffix(operation, "e") {
		return operation + "d"
	}
	return operation + "ed"
}

func (e ResolveEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e ResolveEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ResolveEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": strconv.Itoa(e.ActorID),
		},
		SDIDSubject: {
			"request": strconv.Itoa(e.RequestID),
		},
		SDIDAction: {
			"operation": e.Operation,
		},
	}
	if e.Group != "" {
		sd[SDIDSubject]["group"] = e.Group
	}
	if e.RoomID != 0 {
		sd[SDIDRoom] = map[string]string{"id": strconv.Itoa(e.RoomID)}
	}
	if e.Success {
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
		if e.Reason != "" {
			sd[SDIDAction]["reason"] = e.Reason
		}
	}
	return sd
}

// CommandDeniedEvent records a command suppressed because its author lacks
// the command's required group
type CommandDeniedEvent struct {
	ActorID       int
	RoomID        int
	Command       string
	RequiredGroup string
}

func (e CommandDeniedEvent) MessageID() string {
	return "command-denied"
}

func (e CommandDeniedEvent) Message() string {
	return fmt.Sprintf("user %d was denied command %q: requires group %s", e.ActorID, e.Command, e.RequiredGroup)
}

func (e CommandDeniedEvent) Severity() Severity {
	return SeverityNotice
}

func (e CommandDeniedEvent) Facility() int {
	return FacilityAuth
}

func (e CommandDeniedEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": strconv.Itoa(e.ActorID),
		},
		SDIDSubject: {
			"group": e.RequiredGroup,
		},
		SDIDAction: {
			"operation": "command",
			"command":   e.Command,
			"result":    "denied",
		},
	}
	if e.RoomID != 0 {
		sd[SDIDRoom] = map[string]string{"id": strconv.Itoa(e.RoomID)}
	}
	return sd
}
