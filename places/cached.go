package places

import (
	"context"

	"github.com/iabalyuk/geoguide/geo"
	"go.uber.org/zap"
)

// DetailCache stores place details between lookups.
type DetailCache interface {
	GetDetail(placeID string) (PlaceDetail, bool)
	PutDetail(detail PlaceDetail)
}

// CachedDirectory serves Detail from a cache and falls through to the wrapped
// directory on a miss. Search results are never cached.
type CachedDirectory struct {
	next   Directory
	cache  DetailCache
	logger *zap.Logger
}

// NewCachedDirectory wraps next with cache.
func NewCachedDirectory(next Directory, cache DetailCache, logger *zap.Logger) *CachedDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedDirectory{next: next, cache: cache, logger: logger.With(zap.String("component", "places.cache"))}
}

// Search implements Directory.
func (d *CachedDirectory) Search(ctx context.Context, center geo.Coordinate, radiusMeters int, types []string) ([]Place, error) {
	return d.next.Search(ctx, center, radiusMeters, types)
}

// Detail implements Directory.
func (d *CachedDirectory) Detail(ctx context.Context, placeID string) (PlaceDetail, error) {
	if placeID == "" {
		return PlaceDetail{}, ErrNoPlaceID
	}
	if detail, ok := d.cache.GetDetail(placeID); ok {
		d.logger.Debug("Detail cache hit", zap.String("place_id", placeID))
		return detail, nil
	}
	detail, err := d.next.Detail(ctx, placeID)
	if err != nil {
		return PlaceDetail{}, err
	}
	d.cache.PutDetail(detail)
	return detail, nil
}

// RouteURL forwards to the wrapped directory when it can build routes.
func (d *CachedDirectory) RouteURL(from, to geo.Coordinate) string {
	if linker, ok := d.next.(RouteLinker); ok {
		return linker.RouteURL(from, to)
	}
	return ""
}

// PhotoURL forwards to the wrapped directory when it can build photo links.
func (d *CachedDirectory) PhotoURL(detail PlaceDetail) string {
	if linker, ok := d.next.(PhotoLinker); ok {
		return linker.PhotoURL(detail)
	}
	return ""
}
