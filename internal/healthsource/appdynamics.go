package healthsource

import (
	"context"
	"fmt"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

// AppDynamicsMetricDefinition is a custom metric addressed by its AppDynamics metric path.
type AppDynamicsMetricDefinition struct {
	MetricDefinition
	BaseFolder         string `json:"baseFolder,omitempty"`
	MetricPath         string `json:"metricPath,omitempty"`
	CompleteMetricPath string `json:"completeMetricPath,omitempty"`
}

// path returns the full metric browser path of the definition.
func (d AppDynamicsMetricDefinition) path(tier string) string {
	if d.CompleteMetricPath != "" {
		return d.CompleteMetricPath
	}
	return fmt.Sprintf("%s|%s|%s", d.BaseFolder, tier, d.MetricPath)
}

// AppDynamicsSpec monitors one tier of an AppDynamics application.
type AppDynamicsSpec struct {
	ConnectorIdentifier string                        `json:"connectorRef"`
	Feature             string                        `json:"feature,omitempty"`
	ApplicationName     string                        `json:"applicationName"`
	TierName            string                        `json:"tierName"`
	MetricPacks         []MetricPackRef               `json:"metricPacks,omitempty"`
	MetricDefinitions   []AppDynamicsMetricDefinition `json:"metricDefinitions,omitempty"`
}

type appDynamicsKey struct {
	application string
	tier        string
	pack        string
	group       string
	category    cvconfig.CVMonitoringCategory
}

func appDynamicsKeyOf(c cvconfig.CVConfig) appDynamicsKey {
	p := payloadOf[cvconfig.AppDynamicsPayload](c)
	return appDynamicsKey{
		application: p.ApplicationName,
		tier:        p.TierName,
		pack:        p.MetricPack.Identifier,
		group:       p.GroupName,
		category:    c.Category,
	}
}

func (s AppDynamicsSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeAppDynamics }
func (s AppDynamicsSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s AppDynamicsSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	ve.requireField("applicationName", s.ApplicationName)
	ve.requireField("tierName", s.TierName)
	validateDefinitions(&ve, "metricDefinitions", s.MetricDefinitions)
	for i, d := range s.MetricDefinitions {
		prefix := fmt.Sprintf("metricDefinitions[%d]", i)
		ve.requireField(prefix+".groupName", d.GroupName)
		if d.CompleteMetricPath == "" && (d.BaseFolder == "" || d.MetricPath == "") {
			ve.Add(prefix+".completeMetricPath", "either completeMetricPath or baseFolder and metricPath are required")
		}
	}
	return ve.Err()
}

func (s AppDynamicsSpec) CVConfigs(ctx context.Context, req Request) ([]cvconfig.CVConfig, error) {
	packs, err := resolvePacks(ctx, req, s.Type(), s.MetricPacks)
	if err != nil {
		return nil, err
	}

	var configs []cvconfig.CVConfig
	for _, pack := range packs {
		configs = append(configs, req.base(s.ConnectorIdentifier, pack.Category, cvconfig.AppDynamicsPayload{
			ApplicationName: s.ApplicationName,
			TierName:        s.TierName,
			MetricPack:      pack,
		}))
	}

	order, groups := groupBy(s.MetricDefinitions, byGroupAndCategory[AppDynamicsMetricDefinition])
	for _, k := range order {
		defs := groups[k]
		infos := make([]cvconfig.AppDynamicsMetricInfo, 0, len(defs))
		common := make([]cvconfig.MetricInfo, 0, len(defs))
		paths := make([]string, 0, len(defs))
		for _, d := range defs {
			info := cvconfig.AppDynamicsMetricInfo{
				MetricInfo:         d.metricInfo(),
				BaseFolder:         d.BaseFolder,
				MetricPath:         d.MetricPath,
				CompleteMetricPath: d.path(s.TierName),
			}
			infos = append(infos, info)
			common = append(common, info.MetricInfo)
			paths = append(paths, info.CompleteMetricPath)
		}
		configs = append(configs, req.base(s.ConnectorIdentifier, k.category, cvconfig.AppDynamicsPayload{
			ApplicationName: s.ApplicationName,
			TierName:        s.TierName,
			GroupName:       k.group,
			MetricPack:      customPack(s.Type(), k.category, common, paths),
			MetricInfos:     infos,
		}))
	}
	return configs, nil
}

func (s AppDynamicsSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, appDynamicsKeyOf)
}

func transformAppDynamics(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeAppDynamics, configs); err != nil {
		return nil, err
	}
	first := payloadOf[cvconfig.AppDynamicsPayload](configs[0])
	spec := AppDynamicsSpec{
		ConnectorIdentifier: configs[0].ConnectorIdentifier,
		ApplicationName:     first.ApplicationName,
		TierName:            first.TierName,
	}
	for _, c := range configs {
		p := payloadOf[cvconfig.AppDynamicsPayload](c)
		if !p.MetricPack.IsCustom() {
			spec.MetricPacks = append(spec.MetricPacks, MetricPackRef{Identifier: p.MetricPack.Identifier})
			continue
		}
		for _, info := range p.MetricInfos {
			spec.MetricDefinitions = append(spec.MetricDefinitions, AppDynamicsMetricDefinition{
				MetricDefinition:   definitionOf(info.MetricInfo, p.GroupName, c.Category),
				BaseFolder:         info.BaseFolder,
				MetricPath:         info.MetricPath,
				CompleteMetricPath: info.CompleteMetricPath,
			})
		}
	}
	return spec, nil
}
