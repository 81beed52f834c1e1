package pipeline

import (
	"github.com/matzehuels/spidermap/pkg/clusters"
	"github.com/matzehuels/spidermap/pkg/errors"
	"github.com/matzehuels/spidermap/pkg/mapview"
	"github.com/matzehuels/spidermap/pkg/render"
	"github.com/matzehuels/spidermap/pkg/spider"
	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

// Load parses the input of opts.
func Load(opts Options) (*clusters.Set, error) {
	if len(opts.Input) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input is required")
	}
	return clusters.Parse(opts.Input)
}

// BuildScene draws set on a map, opens the cluster named by opts and returns
// the resulting scene. Proxy markers carry their member ID as reference.
// opts is expected to have passed [Options.ValidateAndSetDefaults].
func BuildScene(set *clusters.Set, opts Options) (render.Scene, layout.Mode, error) {
	g, ok := set.Group(opts.ClusterID)
	if !ok {
		return render.Scene{}, "", errors.New(errors.ErrCodeClusterNotFound, "cluster %q not found", opts.ClusterID)
	}

	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	m := mapview.New(opts.viewFor(g.Center), mapview.WithLogger(logger))
	set.AddTo(m)
	cl, _ := m.Cluster(g.ID)

	ctrl := spider.New(m, m.ClusterLayer(),
		spider.WithOptions(opts.SpiderOptions()),
		spider.WithLogger(logger))
	defer ctrl.Dispose()

	ctrl.Activate(cl)
	if !ctrl.IsOpen() {
		return render.Scene{}, "", errors.New(errors.ErrCodeProjectionFailed, "cluster %q could not be projected into the view", g.ID)
	}
	for _, p := range ctrl.Proxies() {
		m.SetRef(p.Marker, p.Member.ID)
	}

	logger.Debug("opened cluster", "cluster", g.ID, "members", cl.Len())
	return m.Snapshot(), layout.ModeFor(cl.Len(), opts.Layout), nil
}
