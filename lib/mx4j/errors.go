package mx4j

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/uol/gobol"

	"github.com/casstools/casstools/lib/opserr"
)

const cPackage = "mx4j"

func errRequest(function, node string, err error) gobol.Error {
	return opserr.New(
		err,
		fmt.Sprintf("node %s is unreachable: %s", node, err.Error()),
		cPackage,
		function,
		http.StatusServiceUnavailable,
	)
}

func errStatus(function, node string, status int) gobol.Error {
	message := fmt.Sprintf("node %s answered status %d", node, status)
	return opserr.New(
		errors.New(message),
		message,
		cPackage,
		function,
		status,
	)
}

func errNoAttribute(function, node, objectName, attribute string) gobol.Error {
	message := fmt.Sprintf("node %s has no attribute %s on %s", node, attribute, objectName)
	return opserr.New(
		errors.New(message),
		message,
		cPackage,
		function,
		http.StatusNotFound,
	)
}

func errOperation(function, node, operation, detail string) gobol.Error {
	message := fmt.Sprintf("operation %s failed on node %s: %s", operation, node, detail)
	return opserr.New(
		errors.New(message),
		message,
		cPackage,
		function,
		http.StatusInternalServerError,
	)
}
