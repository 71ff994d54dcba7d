package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultTranscriptName is the transcript file name used by exports when
// none is given.
const DefaultTranscriptName = "TEC"
