// Package healthsource turns health source specifications into monitoring
// configs and reconciles them against what is stored.
//
// Every data source type has a Spec implementation made of four parts: an
// identity key over its payload, a mapper (CVConfigs) that expands the
// specification into one config per key, Validate, and a reverse transformer
// that rebuilds the specification from stored configs. Reconcile composes
// them:
//
//	Validate -> CVConfigs -> key collision check -> reconciler.Reconcile
//
// Metric definitions that carry no risk category are not analysed and do not
// produce configs. Log types always use the Errors category.
//
// The Registry maps a DataSourceType to the decoder and transformer of its
// Spec. DefaultRegistry holds every built-in type; an unknown type yields an
// *UnknownTypeError.
//
// Errors are typed: ValidationErrors from Validate and Decode, *MappingError
// from CVConfigs and transformers, *UnknownTypeError from the Registry and
// *reconciler.KeyCollisionError when a mapper produced two configs with the
// same key.
package healthsource
