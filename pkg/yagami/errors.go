package yagami

import "errors"

// ErrGenerationFailed indicates the generation backend returned no usable reply.
var ErrGenerationFailed = errors.New("generation failed")

// ErrEmptyReply indicates the generation backend completed with empty output.
var ErrEmptyReply = errors.New("empty generated reply")

// ErrInvalidOutboundRequest indicates an outbound request failed envelope validation.
var ErrInvalidOutboundRequest = errors.New("invalid outbound request")

// ErrUnknownPeer indicates the transport has no routing identity for a user yet.
var ErrUnknownPeer = errors.New("unknown peer")
