package domain

import "context"

// ViewStats is the external hit-statistics collaborator.
type ViewStats interface {
	// RecordHit reports a visit to uri from ip. It never blocks the caller on
	// the remote service and never fails.
	RecordHit(ctx context.Context, uri, ip string)
	// CountViews returns the number of unique visitors recorded for each of
	// uris. URIs without recorded visits map to zero.
	CountViews(ctx context.Context, uris []string) (map[string]int64, error)
}
