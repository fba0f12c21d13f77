package snmp

import "github.com/gosnmp/gosnmp"

// ErrorCode enumerates the SNMP PDU error codes the transport surfaces
// in a Response.
type ErrorCode string

const (
	ErrNone                ErrorCode = "noError"
	ErrTooBig              ErrorCode = "tooBig"
	ErrNoSuchName          ErrorCode = "noSuchName"
	ErrBadValue            ErrorCode = "badValue"
	ErrReadOnly            ErrorCode = "readOnly"
	ErrGenErr              ErrorCode = "genErr"
	ErrNoAccess            ErrorCode = "noAccess"
	ErrWrongType           ErrorCode = "wrongType"
	ErrWrongLength         ErrorCode = "wrongLength"
	ErrWrongEncoding       ErrorCode = "wrongEncoding"
	ErrWrongValue          ErrorCode = "wrongValue"
	ErrNoCreation          ErrorCode = "noCreation"
	ErrInconsistentValue   ErrorCode = "inconsistentValue"
	ErrResourceUnavailable ErrorCode = "resourceUnavailable"
	ErrCommitFailed        ErrorCode = "commitFailed"
	ErrUndoFailed          ErrorCode = "undoFailed"
	ErrAuthorizationError  ErrorCode = "authorizationError"
	ErrNotWritable         ErrorCode = "notWritable"
	ErrInconsistentName    ErrorCode = "inconsistentName"
	ErrTimeout             ErrorCode = "timeout"
	ErrTransportFailure    ErrorCode = "transportFailure"
)

func errorCodeFromSNMP(e gosnmp.SNMPError) ErrorCode {
	switch e {
	case gosnmp.NoError:
		return ErrNone
	case gosnmp.TooBig:
		return ErrTooBig
	case gosnmp.NoSuchName:
		return ErrNoSuchName
	case gosnmp.BadValue:
		return ErrBadValue
	case gosnmp.ReadOnly:
		return ErrReadOnly
	case gosnmp.GenErr:
		return ErrGenErr
	case gosnmp.NoAccess:
		return ErrNoAccess
	case gosnmp.WrongType:
		return ErrWrongType
	case gosnmp.WrongLength:
		return ErrWrongLength
	case gosnmp.WrongEncoding:
		return ErrWrongEncoding
	case gosnmp.WrongValue:
		return ErrWrongValue
	case gosnmp.NoCreation:
		return ErrNoCreation
	case gosnmp.InconsistentValue:
		return ErrInconsistentValue
	case gosnmp.ResourceUnavailable:
		return ErrResourceUnavailable
	case gosnmp.CommitFailed:
		return ErrCommitFailed
	case gosnmp.UndoFailed:
		return ErrUndoFailed
	case gosnmp.AuthorizationError:
		return ErrAuthorizationError
	case gosnmp.NotWritable:
		return ErrNotWritable
	case gosnmp.InconsistentName:
		return ErrInconsistentName
	default:
		return ErrGenErr
	}
}

// Response is the uniform result contract every transport operation
// returns.
type Response struct {
	Success   bool
	Varbinds  []Varbind
	Error     string
	ErrorCode ErrorCode
}

func failure(code ErrorCode, err error) Response {
	return Response{Success: false, ErrorCode: code, Error: err.Error()}
}

func success(vbs []Varbind) Response {
	return Response{Success: true, Varbinds: vbs, ErrorCode: ErrNone}
}
