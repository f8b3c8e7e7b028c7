package fetcher

import (
	"context"

	"github.com/rohmanhakim/billtext/pkg/failure"
	"github.com/rohmanhakim/billtext/pkg/retry"
)

type Fetcher interface {
	Fetch(
		ctx context.Context,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
