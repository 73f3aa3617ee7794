package s7

import "fmt"

// ErrorKind classifies the failure a client operation returned, mirroring
// the taxonomy documented for this protocol engine.
type ErrorKind int

const (
	KindInvalidInput ErrorKind = iota
	KindPduLength
	KindInvalidDataSize
	KindInvalidPdu
	KindInvalidResponse
	KindCpu
	KindCannotStart
	KindCannotStop
	KindAlreadyRun
	KindAlreadyStop
	KindInvalidCpuStatus
	KindInvalidBlockType
	KindInvalidPlcAnswer
	KindBufferTooSmall
	KindIso
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindPduLength:
		return "PduLength"
	case KindInvalidDataSize:
		return "InvalidDataSize"
	case KindInvalidPdu:
		return "InvalidPdu"
	case KindInvalidResponse:
		return "InvalidResponse"
	case KindCpu:
		return "Cpu"
	case KindCannotStart:
		return "CannotStart"
	case KindCannotStop:
		return "CannotStop"
	case KindAlreadyRun:
		return "AlreadyRun"
	case KindAlreadyStop:
		return "AlreadyStop"
	case KindInvalidCpuStatus:
		return "InvalidCpuStatus"
	case KindInvalidBlockType:
		return "InvalidBlockType"
	case KindInvalidPlcAnswer:
		return "InvalidPlcAnswer"
	case KindBufferTooSmall:
		return "BufferTooSmall"
	case KindIso:
		return "Iso"
	case KindIO:
		return "IO"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the single error type every engine operation returns. Message is
// human-readable context; Code carries a CPU error byte for Kind == KindCpu;
// Bytes carries the offending raw response when useful for diagnostics.
type Error struct {
	Kind    ErrorKind
	Message string
	Code    int
	Bytes   []byte
	Cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindCpu:
		return fmt.Sprintf("s7: cpu error 0x%02X: %s", e.Code, e.Message)
	default:
		if e.Message == "" {
			return fmt.Sprintf("s7: %s", e.Kind)
		}
		return fmt.Sprintf("s7: %s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func newCpuError(code byte) *Error {
	return &Error{Kind: KindCpu, Code: int(code), Message: cpuErrorMessage(code)}
}

func cpuErrorMessage(code byte) string {
	switch code {
	case 0x00:
		return "no error"
	case 0x01:
		return "hardware fault"
	case 0x03:
		return "access denied"
	case 0x05:
		return "address error"
	case 0x06:
		return "data type not supported"
	case 0x07:
		return "data type inconsistent"
	case 0x0A:
		return "object does not exist"
	default:
		return fmt.Sprintf("unknown cpu error code 0x%02X", code)
	}
}

func newInvalidResponse(reason string, raw []byte) *Error {
	return &Error{Kind: KindInvalidResponse, Message: reason, Bytes: raw}
}

func newIOError(cause error) *Error {
	return &Error{Kind: KindIO, Message: cause.Error(), Cause: cause}
}
