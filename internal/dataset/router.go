package dataset

import (
	"context"
	"fmt"

	domain "gonarrate/domain/dataset"
	"gonarrate/ports"
)

// Route sends matching references to one source. Local routes resolve the
// reference against file storage first.
type Route struct {
	Name   string
	Match  func(ref string) bool
	Source ports.DatasetSource
	Local  bool
}

// Router implements ports.DatasetSource by dispatching on the reference
type Router struct {
	storage *LocalFileStorage
	routes  []Route
}

// NewRouter creates a router; routes are tried in order
func NewRouter(storage *LocalFileStorage, routes ...Route) *Router {
	return &Router{storage: storage, routes: routes}
}

func (r *Router) route(ref string) (Route, error) {
	for _, rt := range r.routes {
		if rt.Match(ref) {
			return rt, nil
		}
	}
	return Route{}, fmt.Errorf("no source handles %q", ref)
}

// Read decodes ref through the first matching route
func (r *Router) Read(ctx context.Context, name, ref string) (*domain.Dataset, error) {
	rt, err := r.route(ref)
	if err != nil {
		return nil, err
	}
	if rt.Source == nil {
		return nil, fmt.Errorf("%s source for %q is not configured", rt.Name, ref)
	}
	if !rt.Local {
		return rt.Source.Read(ctx, name, ref)
	}
	resolved := r.storage.Resolve(ref)
	if err := r.storage.Check(ctx, resolved); err != nil {
		return nil, err
	}
	return rt.Source.Read(ctx, name, resolved)
}

// Fingerprint delegates to file storage for local routes and to the source
// when it can fingerprint itself; otherwise it returns "".
func (r *Router) Fingerprint(ctx context.Context, ref string) (string, error) {
	rt, err := r.route(ref)
	if err != nil {
		return "", err
	}
	if rt.Local {
		return r.storage.Fingerprint(ctx, ref)
	}
	if fp, ok := rt.Source.(ports.Fingerprinter); ok {
		return fp.Fingerprint(ctx, ref)
	}
	return "", nil
}
