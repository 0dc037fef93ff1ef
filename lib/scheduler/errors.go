package scheduler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/uol/gobol"

	"github.com/casstools/casstools/lib/opserr"
)

const (
	cPackage = "scheduler"

	codeSingleNodeCluster = "SCHED-SINGLE-NODE"
)

func errConnect(function, keyspace string, err error) gobol.Error {
	return opserr.New(
		err,
		fmt.Sprintf("error connecting to keyspace %s: %s", keyspace, err.Error()),
		cPackage,
		function,
		http.StatusServiceUnavailable,
	)
}

func errQuery(function string, err error) gobol.Error {
	return opserr.New(
		err,
		err.Error(),
		cPackage,
		function,
		http.StatusInternalServerError,
	)
}

func errSchema(function string, err error) gobol.Error {
	return opserr.New(
		err,
		"error creating the bookkeeping schema: "+err.Error(),
		cPackage,
		function,
		http.StatusInternalServerError,
	)
}

func errSingleNodeCluster(function string) gobol.Error {
	message := "no peers defined, repairs on a single node cluster are silly"
	return opserr.NewErrorWithCode(
		errors.New(message),
		message,
		cPackage,
		function,
		http.StatusPreconditionFailed,
		codeSingleNodeCluster,
	)
}

// IsSingleNodeCluster - true when schema creation refused to run because
// the cluster has no peers
func IsSingleNodeCluster(gerr gobol.Error) bool {
	return gerr != nil && gerr.ErrorCode() == codeSingleNodeCluster
}

func errRepairTool(function, tool string, err error) gobol.Error {
	return opserr.New(
		err,
		fmt.Sprintf("error running the range repair tool %s: %s", tool, err.Error()),
		cPackage,
		function,
		http.StatusInternalServerError,
	)
}
