package healthsource

import (
	"context"
	"fmt"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

// ElasticSearchQuery is a log search against one Elasticsearch index.
type ElasticSearchQuery struct {
	LogQuery
	Index               string `json:"index"`
	TimestampIdentifier string `json:"timeStampIdentifier"`
	TimestampFormat     string `json:"timeStampFormat,omitempty"`
	MessageIdentifier   string `json:"messageIdentifier"`
}

// ElasticSearchSpec monitors Elasticsearch logs.
type ElasticSearchSpec struct {
	ConnectorIdentifier string               `json:"connectorRef"`
	Feature             string               `json:"feature,omitempty"`
	Queries             []ElasticSearchQuery `json:"queries"`
}

func (s ElasticSearchSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeElasticSearch }
func (s ElasticSearchSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s ElasticSearchSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	validateLogQueries(&ve, "queries", s.Queries)
	for i, q := range s.Queries {
		prefix := fmt.Sprintf("queries[%d]", i)
		ve.requireField(prefix+".index", q.Index)
		ve.requireField(prefix+".timeStampIdentifier", q.TimestampIdentifier)
		ve.requireField(prefix+".messageIdentifier", q.MessageIdentifier)
		ve.requireField(prefix+".serviceInstanceIdentifier", q.ServiceInstanceIdentifier)
	}
	return ve.Err()
}

func (s ElasticSearchSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	configs := make([]cvconfig.CVConfig, 0, len(s.Queries))
	for _, q := range s.Queries {
		configs = append(configs, req.base(s.ConnectorIdentifier, cvconfig.CategoryErrors, cvconfig.ElasticSearchPayload{
			QueryName:                 q.Name,
			Query:                     q.Query,
			Index:                     q.Index,
			ServiceInstanceIdentifier: q.ServiceInstanceIdentifier,
			TimestampIdentifier:       q.TimestampIdentifier,
			MessageIdentifier:         q.MessageIdentifier,
			TimestampFormat:           q.TimestampFormat,
		}))
	}
	return configs, nil
}

func (s ElasticSearchSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, queryNameKeyOf)
}

func transformElasticSearch(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeElasticSearch, configs); err != nil {
		return nil, err
	}
	spec := ElasticSearchSpec{ConnectorIdentifier: configs[0].ConnectorIdentifier}
	for _, c := range configs {
		p := payloadOf[cvconfig.ElasticSearchPayload](c)
		spec.Queries = append(spec.Queries, ElasticSearchQuery{
			LogQuery: LogQuery{
				Name:                      p.QueryName,
				Query:                     p.Query,
				ServiceInstanceIdentifier: p.ServiceInstanceIdentifier,
			},
			Index:               p.Index,
			TimestampIdentifier: p.TimestampIdentifier,
			TimestampFormat:     p.TimestampFormat,
			MessageIdentifier:   p.MessageIdentifier,
		})
	}
	return spec, nil
}
