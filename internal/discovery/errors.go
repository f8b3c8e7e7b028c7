package discovery

import (
	"fmt"

	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/pkg/failure"
)

type DiscoveryErrorCause string

const (
	ErrCauseListingUnavailable DiscoveryErrorCause = "listing unavailable"
	ErrCauseListingUnparsable  DiscoveryErrorCause = "listing unparsable"
)

type DiscoveryError struct {
	Message   string
	Retryable bool
	Cause     DiscoveryErrorCause
	Err       error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery error: %s: %s", e.Cause, e.Message)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

func (e *DiscoveryError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapDiscoveryErrorToMetadataCause is observational only.
func mapDiscoveryErrorToMetadataCause(err *DiscoveryError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseListingUnavailable:
		return metadata.CauseNetworkFailure
	case ErrCauseListingUnparsable:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
