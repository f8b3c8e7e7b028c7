package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/rohmanhakim/billtext/internal/cache"
	"github.com/rohmanhakim/billtext/internal/fetcher"
	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/pkg/failure"
	"github.com/rohmanhakim/billtext/pkg/retry"
)

/*
Responsibilities

- Fetch the bill listing page
- Turn its document links into a deduplicated Bill catalog
- Serve repeated calls from the listing cache

Discovery is best-effort. A listing that cannot be fetched or parsed yields
an empty catalog; the reason goes to the metadata sink and is never cached,
so the next call tries the network again. A successful parse is cached even
when it produced no bills.
*/

const cacheKeyPrefix = "bills:"

type BillDiscovery struct {
	metadataSink metadata.MetadataSink
	fetcher      fetcher.Fetcher
	cache        cache.Cache[string, []Bill]
	param        Param
	retryParam   retry.RetryParam
}

func NewBillDiscovery(
	metadataSink metadata.MetadataSink,
	htmlFetcher fetcher.Fetcher,
	listingCache cache.Cache[string, []Bill],
	param Param,
	retryParam retry.RetryParam,
) *BillDiscovery {
	return &BillDiscovery{
		metadataSink: metadataSink,
		fetcher:      htmlFetcher,
		cache:        listingCache,
		param:        param,
		retryParam:   retryParam,
	}
}

// Discover returns the bill catalog, or an empty one if the listing is unavailable.
func (d *BillDiscovery) Discover(ctx context.Context) []Bill {
	bills, _ := d.Catalog(ctx)
	return bills
}

// Catalog is Discover with the failure reason exposed to the caller.
func (d *BillDiscovery) Catalog(ctx context.Context) ([]Bill, failure.ClassifiedError) {
	key := d.cacheKey()
	if cached, ok := d.cache.Get(key); ok {
		d.metadataSink.RecordCacheLookup("listing", key, true)
		return cloneBills(cached), nil
	}
	d.metadataSink.RecordCacheLookup("listing", key, false)

	bills, err := d.discover(ctx)
	if err != nil {
		var discoveryErr *DiscoveryError
		errors.As(err, &discoveryErr)
		d.metadataSink.RecordError(
			time.Now(),
			"discovery",
			"BillDiscovery.Catalog",
			mapDiscoveryErrorToMetadataCause(discoveryErr),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, d.param.listingUrl.String()),
			},
		)
		return []Bill{}, err
	}

	d.cache.Put(key, cloneBills(bills))
	return bills, nil
}

func (d *BillDiscovery) discover(ctx context.Context) ([]Bill, failure.ClassifiedError) {
	fetchParam := fetcher.NewFetchParam(
		d.param.listingUrl,
		d.param.userAgent,
		d.param.timeout,
		fetcher.ListingContent,
	)

	result, err := d.fetcher.Fetch(ctx, fetchParam, d.retryParam)
	if err != nil {
		return nil, &DiscoveryError{
			Message:   "could not fetch the listing page",
			Retryable: err.Severity() == failure.SeverityRecoverable,
			Cause:     ErrCauseListingUnavailable,
			Err:       err,
		}
	}

	bills, stats, parseErr := parseBills(d.param.baseUrl, d.param.pathSegments, result.Body())
	if parseErr != nil {
		return nil, &DiscoveryError{
			Message:   parseErr.Error(),
			Retryable: false,
			Cause:     ErrCauseListingUnparsable,
			Err:       parseErr,
		}
	}

	d.metadataSink.RecordDiscovery(
		d.param.listingUrl.String(),
		stats.candidates,
		stats.accepted,
		len(bills),
	)

	if bills == nil {
		bills = []Bill{}
	}
	return bills, nil
}

func (d *BillDiscovery) cacheKey() string {
	return cacheKeyPrefix + d.param.listingUrl.String()
}

// cloneBills keeps callers from mutating the slice held by the cache.
func cloneBills(bills []Bill) []Bill {
	out := make([]Bill, len(bills))
	copy(out, bills)
	return out
}
