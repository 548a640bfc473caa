// Package reconciler computes the mutations that bring stored monitoring
// configuration in line with a desired state.
//
// Reconcile is generic over the key type. Each health source type supplies
// its own comparable key, built only from the fields that identify a config,
// and the reconciler matches desired against existing configs by that key:
//
//	result := reconciler.Reconcile(desired, existing, func(c cvconfig.CVConfig) groupKey {
//	    p := c.Payload.(cvconfig.PrometheusPayload)
//	    return groupKey{group: p.GroupName, category: c.Category}
//	})
//
// The result is a MutationSet. Nothing is written by this package: the
// caller hands the set to a store. Reconciliation is pure, so passes for
// different health sources may run concurrently.
//
// Metrics records per data source type how many passes ran and what they
// produced.
package reconciler
