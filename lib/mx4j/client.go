package mx4j

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/uol/gobol"
	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/constants"
)

//
// Client for the MX4J HTTP adaptor exposed by a Cassandra node. All reads
// and mutations are plain GET requests against the bridge's endpoints.
//

// Arg - a typed argument for an mbean operation
type Arg struct {
	Type  string
	Value string
}

// StringArg - builds a java.lang.String operation argument
func StringArg(value string) Arg {
	return Arg{Type: "java.lang.String", Value: value}
}

// Client - talks to one node's MX4J bridge
type Client struct {
	node   string
	port   int
	client *http.Client
	logger *logh.ContextualLogger
}

// New - creates a client for one node
func New(node string, port int, timeout time.Duration) *Client {

	return &Client{
		node:   node,
		port:   port,
		client: &http.Client{Timeout: timeout},
		logger: logh.CreateContextualLogger(constants.StringsPKG, "mx4j", constants.StringsHost, node),
	}
}

// Node - the node this client polls
func (c *Client) Node() string {
	return c.node
}

// MBean - reads every attribute exposed on an mbean page
func (c *Client) MBean(objectName string) (Attributes, gobol.Error) {

	query := url.Values{}
	query.Set("objectname", objectName)

	body, gerr := c.get("/mbean", query)
	if gerr != nil {
		return nil, gerr
	}

	return Parse(body), nil
}

// Attribute - reads a single mbean attribute
func (c *Client) Attribute(objectName, attribute string) (string, gobol.Error) {

	query := url.Values{}
	query.Set("objectname", objectName)
	query.Set("attribute", attribute)

	body, gerr := c.get("/getattribute", query)
	if gerr != nil {
		return constants.StringsEmpty, gerr
	}

	attrs := Parse(body)
	value, ok := attrs[attribute]
	if !ok {
		return constants.StringsEmpty, errNoAttribute("Attribute", c.node, objectName, attribute)
	}

	return value, nil
}

// Invoke - invokes an mbean operation through the bridge
func (c *Client) Invoke(objectName, operation string, args ...Arg) gobol.Error {

	query := url.Values{}
	query.Set("objectname", objectName)
	query.Set("operation", operation)

	for i, arg := range args {
		query.Set(fmt.Sprintf("type%d", i), arg.Type)
		query.Set(fmt.Sprintf("value%d", i), arg.Value)
	}

	body, gerr := c.get("/invoke", query)
	if gerr != nil {
		return gerr
	}

	if message, failed := invokeFailure(body); failed {
		return errOperation("Invoke", c.node, operation, message)
	}

	if logh.DebugEnabled {
		c.logger.Debug().Msgf("invoked %s on %s", operation, objectName)
	}

	return nil
}

func (c *Client) get(path string, query url.Values) ([]byte, gobol.Error) {

	address := fmt.Sprintf("http://%s:%d%s?%s", c.node, c.port, path, query.Encode())

	if logh.DebugEnabled {
		c.logger.Debug().Msgf("GET %s", address)
	}

	resp, err := c.client.Get(address)
	if err != nil {
		return nil, errRequest("get", c.node, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errStatus("get", c.node, resp.StatusCode)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errRequest("get", c.node, err)
	}

	return body, nil
}
