// Package cvconfig defines the persisted monitoring configuration model.
//
// A CVConfig is one reconciled unit of monitoring configuration: the
// account/org/project scope, the monitored service and health source it
// belongs to, a monitoring category and a type-specific Payload. The Payload
// is a closed tagged union over DataSourceType; every concrete payload lives
// in this package and is registered in the decoder table used by the JSON
// codec.
//
// Values in this package are treated as immutable. Reconciliation never
// mutates a CVConfig in place; it builds new values (WithUUID returns a copy).
package cvconfig
