package pipeline

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/geodata-ops/firepipe/external/portal"
	"github.com/geodata-ops/firepipe/schema"
)

const logPrefix = "pipeline"

// FireFetcher - fetches the active-fire dataset
type FireFetcher interface {
	Fetch(ctx context.Context) (*schema.FeatureSet, error)
}

// BoundaryFetcher - fetches country boundaries restricted to an allow-list
type BoundaryFetcher interface {
	Fetch(ctx context.Context, keep []string) ([]schema.Boundary, error)
}

// FilterFunc - the spatial containment join between the two datasets
type FilterFunc func(*schema.FeatureSet, []schema.Boundary) (*schema.FeatureSet, error)

// Pipeline - the four-stage fire publishing run
type Pipeline struct {
	fire      FireFetcher
	bounds    BoundaryFetcher
	portal    portal.Portal
	filter    FilterFunc
	countries []string
	itemTitle string
}

// New - assemble a pipeline from its stage collaborators
func New(fire FireFetcher, bounds BoundaryFetcher, p portal.Portal, filter FilterFunc, countries []string, itemTitle string) *Pipeline {
	return &Pipeline{
		fire:      fire,
		bounds:    bounds,
		portal:    p,
		filter:    filter,
		countries: countries,
		itemTitle: itemTitle,
	}
}

// Run - execute the stages strictly in order. Any stage error aborts the run
// before later stages, so a failed fetch never touches the portal.
func (p *Pipeline) Run(ctx context.Context) error {
	set, err := p.fire.Fetch(ctx)
	if nil != err {
		return err
	}

	boundaries, err := p.bounds.Fetch(ctx, p.countries)
	if nil != err {
		return err
	}

	filtered, err := p.filter(set, boundaries)
	if nil != err {
		return err
	}

	return p.publish(ctx, filtered)
}

// publish - the search-then-overwrite-or-create state machine. An empty
// dataset still publishes; after any successful run at most one item with
// the target title exists.
func (p *Pipeline) publish(ctx context.Context, set *schema.FeatureSet) error {
	log.WithFields(log.Fields{
		"prefix": logPrefix,
		"title":  p.itemTitle,
	}).Info("publishing to portal")

	if err := p.portal.GenerateToken(ctx); nil != err {
		return &PublishError{Err: err}
	}

	item, err := p.portal.SearchItemByTitle(ctx, p.itemTitle)
	if nil != err {
		return &PublishError{Err: err}
	}

	if item != nil {
		if err := p.portal.OverwriteItem(ctx, item, set); nil != err {
			return &PublishError{Err: err}
		}
	} else {
		if err := p.portal.CreateLayer(ctx, p.itemTitle, set); nil != err {
			return &PublishError{Err: err}
		}
	}

	log.WithField("prefix", logPrefix).Info("publishing complete")

	return nil
}
