package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry, continuation, or abort decisions.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure
  - Transport failure, timeout, or a non-2xx HTTP status.

# CausePolicyDisallow
  - The remote side refused the request (403, 429).

# CauseContentInvalid
  - Content was fetched but is not what the stage expects
    (HTML where a PDF was required, unparsable listing markup).

# CauseParseFailure
  - A payload of the right type could not be opened (corrupt PDF).

# CauseOCRFailure
  - Rasterizing or recognizing a single page failed.

# CauseNoText
  - Every page of a document came back empty.

# CauseStorageFailure
  - Writing an output artifact failed.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseParseFailure
	CauseOCRFailure
	CauseNoText
	CauseStorageFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseParseFailure:
		return "parse_failure"
	case CauseOCRFailure:
		return "ocr_failure"
	case CauseNoText:
		return "no_text"
	case CauseStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

type ArtifactKind string

const (
	ArtifactText ArtifactKind = "text"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPage       AttributeKey = "page"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrMessage    AttributeKey = "message"
	AttrWritePath  AttributeKey = "write_path"
	AttrDigest     AttributeKey = "digest"
	AttrEngine     AttributeKey = "engine"
	AttrSizeBytes  AttributeKey = "size_bytes"
)
