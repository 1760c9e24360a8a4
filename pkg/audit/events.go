package audit

import "fmt"

// Operation is the kind of change an administrator made.
type Operation string

const (
	OperationCreate     Operation = "create"
	OperationUpdate     Operation = "update"
	OperationDelete     Operation = "delete"
	OperationDeactivate Operation = "deactivate"
	OperationReactivate Operation = "reactivate"
	OperationReset      Operation = "reset"
)

var pastTense = map[Operation]string{
	OperationCreate:     "created",
	OperationUpdate:     "updated",
	OperationDelete:     "deleted",
	OperationDeactivate: "deactivated",
	OperationReactivate: "reactivated",
	OperationReset:      "reset",
}

// ChangeEvent records an administrative change to an organization or the instance.
type ChangeEvent struct {
	Actor        string
	ClientIP     string
	OrgID        string
	Resource     string // "org", "policy", "origin", "smtp", "idp", "text"
	ResourceID   string
	Operation    Operation
	Success      bool
	ErrorMessage string
}

func (e ChangeEvent) MessageID() string {
	return e.Resource
}

func (e ChangeEvent) target() string {
	if e.ResourceID == "" {
		return e.Resource
	}
	return fmt.Sprintf("%s %s", e.Resource, e.ResourceID)
}

func (e ChangeEvent) Message() string {
	scope := ""
	if e.OrgID != "" {
		scope = " in org " + e.OrgID
	}
	if e.Success {
		verb, ok := pastTense[e.Operation]
		if !ok {
			verb = string(e.Operation) + "d"
		}
		return fmt.Sprintf("%s %s %s%s", e.Actor, verb, e.target(), scope)
	}
	msg := fmt.Sprintf("%s tried to %s %s%s", e.Actor, e.Operation, e.target(), scope)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ChangeEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e ChangeEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ChangeEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDActor: {
			"user": e.Actor,
		},
		SDIDTarget: {
			"resource": e.Resource,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": string(e.Operation),
		},
	}
	if e.OrgID != "" {
		sd[SDIDTarget]["org"] = e.OrgID
	}
	if e.ResourceID != "" {
		sd[SDIDTarget]["id"] = e.ResourceID
	}
	if e.Success {
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}

// DeniedEvent records a request rejected by authorization.
type DeniedEvent struct {
	Actor    string
	ClientIP string
	Method   string
	Path     string
	Reason   string
}

func (e DeniedEvent) MessageID() string {
	return "authz"
}

func (e DeniedEvent) Message() string {
	actor := e.Actor
	if actor == "" {
		actor = "anonymous"
	}
	return fmt.Sprintf("%s was denied %s %s: %s", actor, e.Method, e.Path, e.Reason)
}

func (e DeniedEvent) Severity() Severity {
	return SeverityWarning
}

func (e DeniedEvent) Facility() int {
	return FacilityAuth
}

func (e DeniedEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDActor: {
			"user": e.Actor,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"method": e.Method,
			"path":   e.Path,
			"result": "denied",
		},
	}
}
