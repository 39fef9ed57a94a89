// Package mirror rewrites download URLs, either to explicit replacement hosts
// or spread over a set of mirrors.
package mirror

import (
	"fmt"
	"net/url"

	"github.com/spuzmc/spuz-get/pkg/download"
	"github.com/spuzmc/spuz-get/pkg/logging"
)

// Router rewrites URLs in two steps. Hosts found in the routing table are
// replaced first. Then, if mirrors are configured, the URL is moved onto one
// of them, picked by consistent hash of its path so a given file is always
// requested from the same mirror.
type Router struct {
	table   RoutingTable
	mirrors []*url.URL
}

func NewRouter(table RoutingTable, mirrors []string) (*Router, error) {
	r := &Router{table: table}
	for _, m := range mirrors {
		u, err := url.Parse(m)
		if err != nil {
			return nil, fmt.Errorf("error parsing mirror %s: %w", m, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("mirror must be an absolute url: %s", m)
		}
		r.mirrors = append(r.mirrors, u)
	}
	return r, nil
}

// Enabled reports whether Route can change anything.
func (r *Router) Enabled() bool {
	return len(r.table) > 0 || len(r.mirrors) > 0
}

func (r *Router) Route(u *url.URL, previous ...int) (*url.URL, error) {
	logger := logging.GetLogger()
	routed := *u
	if host, ok := r.table[u.Host]; ok {
		routed.Host = host
	}
	if len(r.mirrors) == 0 {
		return &routed, nil
	}

	bucket, err := HashBucket(routed.Path, len(r.mirrors), previous...)
	if err != nil {
		return nil, err
	}
	mirror := r.mirrors[bucket]
	target := mirror.JoinPath(routed.Path)
	target.RawQuery = routed.RawQuery
	logger.Trace().Str("url", u.String()).Str("mirror", mirror.Host).Int("bucket", bucket).Msg("Mirror")
	return target, nil
}

// RouteTasks returns copies of tasks with their URLs routed.
func (r *Router) RouteTasks(tasks []download.Task) ([]download.Task, error) {
	routed := make([]download.Task, len(tasks))
	for i, task := range tasks {
		u, err := r.Route(task.URL)
		if err != nil {
			return nil, fmt.Errorf("error routing %s: %w", task.URL, err)
		}
		task.URL = u
		routed[i] = task
	}
	return routed, nil
}
