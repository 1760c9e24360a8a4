// Package audit provides audit logging for administrative operations.
//
// Every change to an organization, its policies, origins, identity providers
// or message texts, and to the instance SMTP configuration, is written as an
// RFC5424 syslog line. Requests rejected by authorization are logged too.
//
// # Event Types
//
//   - ChangeEvent: create, update, delete, deactivate, reactivate, reset
//   - DeniedEvent: a request rejected by authorization
//
// # Usage
//
//	audit.Log(audit.ChangeEvent{
//	    Actor:      "alice",
//	    OrgID:      org.ID,
//	    Resource:   "policy",
//	    ResourceID: "lockout",
//	    Operation:  audit.OperationUpdate,
//	    Success:    true,
//	})
//
// When a Store is installed with SetStore, events are also inserted into the
// audit_messages table.
package audit
