package rpc

import (
	"fmt"
	"reflect"
)

// RpcErrorKind is the closed tag of the RpcError sum type. Consensus
// equality depends on structural comparison of errors, so this is never
// collapsed into an opaque string (§9 design note).
type RpcErrorKind int

const (
	KindJsonRpcError RpcErrorKind = iota
	KindTooFewCycles
	KindInvalidRpcConfig
	KindUnsupportedCluster
	KindValidationError
	KindIcError
	KindInvalidHttpJsonRpcResponse
)

// IcRejectCode mirrors the host platform's outcall rejection codes verbatim.
type IcRejectCode int

const (
	NoError IcRejectCode = iota
	CanisterError
	SysTransient
	DestinationInvalid
	Unknown
	SysFatal
	CanisterReject
)

func (c IcRejectCode) String() string {
	switch c {
	case NoError:
		return "NoError"
	case CanisterError:
		return "CanisterError"
	case SysTransient:
		return "SysTransient"
	case DestinationInvalid:
		return "DestinationInvalid"
	case Unknown:
		return "Unknown"
	case SysFatal:
		return "SysFatal"
	case CanisterReject:
		return "CanisterReject"
	default:
		return fmt.Sprintf("IcRejectCode(%d)", int(c))
	}
}

// RpcError is the closed error enumeration described in spec §3. Exactly
// one variant's fields are meaningful at a time, selected by Kind.
type RpcError struct {
	Kind RpcErrorKind

	// KindJsonRpcError
	JsonRpcCode    int64
	JsonRpcMessage string

	// KindTooFewCycles
	ExpectedCycles Cycles
	ReceivedCycles Cycles

	// KindInvalidRpcConfig, KindUnsupportedCluster, KindValidationError
	Message string

	// KindIcError
	IcCode    IcRejectCode
	IcMessage string

	// KindInvalidHttpJsonRpcResponse
	HttpStatus    int
	HttpBody      string
	ParsingError  *string
}

func (e *RpcError) Error() string {
	switch e.Kind {
	case KindJsonRpcError:
		return fmt.Sprintf("json-rpc error %d: %s", e.JsonRpcCode, e.JsonRpcMessage)
	case KindTooFewCycles:
		return fmt.Sprintf("too few cycles: expected %d, received %d", e.ExpectedCycles, e.ReceivedCycles)
	case KindInvalidRpcConfig:
		return fmt.Sprintf("invalid rpc config: %s", e.Message)
	case KindUnsupportedCluster:
		return fmt.Sprintf("unsupported cluster: %s", e.Message)
	case KindValidationError:
		return fmt.Sprintf("validation error: %s", e.Message)
	case KindIcError:
		return fmt.Sprintf("outcall rejected (%s): %s", e.IcCode, e.IcMessage)
	case KindInvalidHttpJsonRpcResponse:
		if e.ParsingError != nil {
			return fmt.Sprintf("invalid http json-rpc response (status %d): %s", e.HttpStatus, *e.ParsingError)
		}
		return fmt.Sprintf("invalid http json-rpc response: status %d", e.HttpStatus)
	default:
		return "unknown rpc error"
	}
}

// Equal implements the "variant and all payload fields byte-identical"
// comparison §4.6 requires for grouping errors under consensus reduction.
func (e *RpcError) Equal(other *RpcError) bool {
	if e == nil || other == nil {
		return e == other
	}
	return reflect.DeepEqual(e, other)
}

// Constructors - kept small and explicit rather than funneled through one
// variadic builder, matching the teacher's habit of one constructor per shape.

func NewJsonRpcError(code int64, message string) *RpcError {
	return &RpcError{Kind: KindJsonRpcError, JsonRpcCode: code, JsonRpcMessage: message}
}

func NewTooFewCycles(expected, received Cycles) *RpcError {
	return &RpcError{Kind: KindTooFewCycles, ExpectedCycles: expected, ReceivedCycles: received}
}

func NewInvalidRpcConfig(message string) *RpcError {
	return &RpcError{Kind: KindInvalidRpcConfig, Message: message}
}

func NewUnsupportedCluster(message string) *RpcError {
	return &RpcError{Kind: KindUnsupportedCluster, Message: message}
}

func NewValidationError(message string) *RpcError {
	return &RpcError{Kind: KindValidationError, Message: message}
}

func NewIcError(code IcRejectCode, message string) *RpcError {
	return &RpcError{Kind: KindIcError, IcCode: code, IcMessage: message}
}

func NewInvalidHttpJsonRpcResponse(status int, body string, parsingError *string) *RpcError {
	return &RpcError{Kind: KindInvalidHttpJsonRpcResponse, HttpStatus: status, HttpBody: body, ParsingError: parsingError}
}
