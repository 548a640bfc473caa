package healthsource

import (
	"context"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

// ErrorTrackingSpec tracks errors of the whole monitored service. It
// always produces exactly one config.
type ErrorTrackingSpec struct {
	ConnectorIdentifier string `json:"connectorRef"`
	Feature             string `json:"feature,omitempty"`
}

type categoryKey struct {
	category cvconfig.CVMonitoringCategory
}

func errorTrackingKeyOf(c cvconfig.CVConfig) categoryKey {
	return categoryKey{category: c.Category}
}

func (s ErrorTrackingSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeErrorTracking }
func (s ErrorTrackingSpec) ConnectorRef() string          { return s.ConnectorIdentifier }
func (s ErrorTrackingSpec) Validate() error               { return nil }

func (s ErrorTrackingSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	return []cvconfig.CVConfig{
		req.base(s.ConnectorIdentifier, cvconfig.CategoryErrors, cvconfig.ErrorTrackingPayload{Feature: s.Feature}),
	}, nil
}

func (s ErrorTrackingSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, errorTrackingKeyOf)
}

func transformErrorTracking(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeErrorTracking, configs); err != nil {
		return nil, err
	}
	return ErrorTrackingSpec{
		ConnectorIdentifier: configs[0].ConnectorIdentifier,
		Feature:             payloadOf[cvconfig.ErrorTrackingPayload](configs[0]).Feature,
	}, nil
}
