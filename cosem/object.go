// Package cosem models the client-side COSEM interface-object layer: a
// small Object contract plus the Data and Register exemplar classes the
// client orchestrator populates from GET responses and drains into SET/
// ACTION requests. These are value holders, not a server object store.
package cosem

import (
	"github.com/thinkgos/go-dlms-cosem/axdr"
	"github.com/thinkgos/go-dlms-cosem/obis"
	"github.com/thinkgos/go-dlms-cosem/xdlms"
)

// Object is the common COSEM interface-class contract: every class
// exposes its class id, version, logical name, and per-attribute get/set.
type Object interface {
	ClassID() uint16
	Version() uint8
	LogicalName() obis.Code
	GetAttribute(id int8) (axdr.Data, error)
	SetAttribute(id int8, v axdr.Data) error
}

// errObjectUndefined and errReadWriteDenied mirror the DataAccessResult
// codes a real server would return for an unknown attribute or an
// attempt to write a read-only one, surfaced locally for client-side
// value-holder consistency.
var (
	errObjectUndefined = xdlms.ResultObjectUndefined.AsError()
	errReadWriteDenied = xdlms.ResultReadWriteDenied.AsError()
	errTypeUnmatched   = xdlms.ResultTypeUnmatched.AsError()
)
