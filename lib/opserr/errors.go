package opserr

import (
	"github.com/rs/zerolog"
	"github.com/uol/gobol"
	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/constants"
)

// New - creates a gobol.Error from a plain error
func New(e error, msg, pkg, function string, httpCode int) gobol.Error {
	return customError{
		e,
		msg,
		pkg,
		function,
		httpCode,
		constants.StringsEmpty,
	}
}

// NewErrorWithCode - creates a gobol.Error carrying an error code
func NewErrorWithCode(e error, msg, pkg, function string, httpCode int, errorCode string) gobol.Error {
	return customError{
		e,
		msg,
		pkg,
		function,
		httpCode,
		errorCode,
	}
}

type customError struct {
	error
	msg       string
	pkg       string
	function  string
	httpCode  int
	errorCode string
}

func (e customError) Package() string {
	return e.pkg
}

func (e customError) Function() string {
	return e.function
}

func (e customError) Message() string {
	return e.msg
}

func (e customError) StatusCode() int {
	return e.httpCode
}

func (e customError) ErrorCode() string {
	return e.errorCode
}

var logErrorAsDebug bool

// SetLogErrorAsDebug - demotes logged errors to the debug level
func SetLogErrorAsDebug(asDebug bool) {
	logErrorAsDebug = asDebug
}

// Log - logs a gobol.Error with its package and function context
func Log(gerr gobol.Error) {

	var ev *zerolog.Event
	if logErrorAsDebug {
		if logh.DebugEnabled {
			ev = logh.Debug()
		}
	} else {
		if logh.ErrorEnabled {
			ev = logh.Error()
		}
	}

	if ev == nil {
		return
	}

	ev.Str(constants.StringsPKG, gerr.Package()).Str(constants.StringsFunc, gerr.Function()).Err(gerr).Msg(gerr.Message())
}
