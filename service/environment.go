package service

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/ports"
)

// DefaultEmbedQueryTimeout bounds the host's own embedding query.
const DefaultEmbedQueryTimeout = 2 * time.Second

// EnvironmentResolver classifies the hosting runtime. Successive host API
// generations left several detection strategies in the wild; they run as
// one ordered fallback chain so classification degrades gracefully when
// the authoritative query is unavailable or slow.
type EnvironmentResolver struct {
	probe        ports.RuntimeProbe
	queryTimeout time.Duration
	log          *zap.Logger
}

// NewEnvironmentResolver creates a resolver over the given probe. A zero
// queryTimeout selects DefaultEmbedQueryTimeout.
func NewEnvironmentResolver(probe ports.RuntimeProbe, queryTimeout time.Duration, log *zap.Logger) *EnvironmentResolver {
	if queryTimeout <= 0 {
		queryTimeout = DefaultEmbedQueryTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EnvironmentResolver{
		probe:        probe,
		queryTimeout: queryTimeout,
		log:          log,
	}
}

// Classify runs the detection chain, first match wins:
//
//  1. an injected host capability settles it immediately,
//  2. the host's embedding query, bounded by the query timeout,
//  3. structural heuristic: non-top-level browsing context or a
//     frame-marked launch URL,
//  4. a denied top-level check (cross-origin restriction) counts as
//     embedded,
//  5. otherwise standalone.
//
// Classify never mutates session state and never returns an error; every
// probe failure falls through to the next step.
func (r *EnvironmentResolver) Classify(ctx context.Context) core.Environment {
	if r.probe == nil {
		return core.EnvStandalone
	}

	if r.probe.InjectedHost() != nil {
		return core.EnvEmbeddedFrame
	}

	queryCtx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	embedded, err := r.probe.QueryEmbedded(queryCtx)
	cancel()
	if err == nil {
		if embedded {
			return core.EnvEmbeddedFrame
		}
		return core.EnvStandalone
	}
	r.log.Debug("embedding query unavailable, using heuristics", zap.Error(err))

	topLevel, err := r.probe.TopLevel()
	if err != nil {
		// Only embedding in a foreign origin makes this check fail.
		r.log.Debug("top-level check denied, assuming embedded", zap.Error(err))
		return core.EnvEmbeddedFrame
	}
	if !topLevel || frameLaunch(r.probe.LaunchURL()) {
		return core.EnvEmbeddedFrame
	}

	return core.EnvStandalone
}

// frameLaunch reports whether the launch URL carries frame-identifying
// query parameters: an explicit frame marker or a numeric identity id.
func frameLaunch(u *url.URL) bool {
	if u == nil {
		return false
	}
	q := u.Query()
	if q.Has("frame") {
		return true
	}
	if fid := q.Get("fid"); fid != "" {
		if _, err := strconv.ParseUint(fid, 10, 64); err == nil {
			return true
		}
	}
	return false
}
