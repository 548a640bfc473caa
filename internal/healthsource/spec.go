package healthsource

import (
	"context"

	"healthsync/internal/cvconfig"
	"healthsync/internal/metricpack"
	"healthsync/internal/reconciler"
)

// Request carries what a health source needs besides its own specification
// to produce configs: where they are stored and which collaborator resolves
// metric packs.
type Request struct {
	Scope                      cvconfig.Scope
	MonitoredServiceIdentifier string
	EnvironmentRef             string
	ServiceRef                 string

	// Identifier and Name are the health source identifier and display name.
	Identifier string
	Name       string
	Enabled    bool

	MetricPacks metricpack.Service
}

// base returns a config with the request fields filled in.
func (r Request) base(connectorRef string, category cvconfig.CVMonitoringCategory, payload cvconfig.Payload) cvconfig.CVConfig {
	return cvconfig.CVConfig{
		Scope:                      r.Scope,
		MonitoredServiceIdentifier: r.MonitoredServiceIdentifier,
		EnvironmentRef:             r.EnvironmentRef,
		ServiceRef:                 r.ServiceRef,
		Identifier:                 r.Identifier,
		MonitoringSourceName:       r.Name,
		ConnectorIdentifier:        connectorRef,
		Category:                   category,
		Enabled:                    r.Enabled,
		Payload:                    payload,
	}
}

// Spec is the specification of one health source.
//
// Validate checks the specification on its own. CVConfigs expands it into
// the desired configs, one per key. Reconcile validates, expands and
// reconciles the result against the configs currently stored for the
// health source. A config of another type in existing is always deleted.
type Spec interface {
	Type() cvconfig.DataSourceType
	ConnectorRef() string
	Validate() error
	CVConfigs(ctx context.Context, req Request) ([]cvconfig.CVConfig, error)
	Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error)
}

// reconcileSpec is the Reconcile implementation shared by every health
// source type; key is the type's identity key over its own payload.
func reconcileSpec[K comparable](ctx context.Context, s Spec, req Request, existing []cvconfig.CVConfig, key func(cvconfig.CVConfig) K) (reconciler.MutationSet, error) {
	metrics := reconciler.GetMetrics()

	if err := s.Validate(); err != nil {
		metrics.RecordFailure(s.Type(), req.Identifier, err.Error())
		return reconciler.MutationSet{}, err
	}
	desired, err := s.CVConfigs(ctx, req)
	if err != nil {
		metrics.RecordFailure(s.Type(), req.Identifier, err.Error())
		return reconciler.MutationSet{}, err
	}
	if err := reconciler.CheckKeys(desired, key); err != nil {
		metrics.RecordFailure(s.Type(), req.Identifier, err.Error())
		return reconciler.MutationSet{}, err
	}

	sameType := make([]cvconfig.CVConfig, 0, len(existing))
	var otherType []cvconfig.CVConfig
	for _, c := range existing {
		if c.Type() == s.Type() {
			sameType = append(sameType, c)
		} else {
			otherType = append(otherType, c)
		}
	}

	result := reconciler.Reconcile(desired, sameType, key)
	result.Deleted = append(result.Deleted, otherType...)
	metrics.RecordPass(s.Type(), req.Identifier, result)
	return result, nil
}

// payloadOf extracts the typed payload of a config produced for the same type.
func payloadOf[P cvconfig.Payload](c cvconfig.CVConfig) P {
	p, _ := c.Payload.(P)
	return p
}
