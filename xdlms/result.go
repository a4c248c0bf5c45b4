package xdlms

import "github.com/thinkgos/go-dlms-cosem/dlms"

// DataAccessResult is the GET/SET/ACTION per-attribute error code, per
// Green Book Table (Blue Book §4.1.8.3.2).
type DataAccessResult byte

const (
	ResultSuccess                 DataAccessResult = 0
	ResultHardwareFault           DataAccessResult = 1
	ResultTemporaryFailure        DataAccessResult = 2
	ResultReadWriteDenied         DataAccessResult = 3
	ResultObjectUndefined         DataAccessResult = 4
	ResultObjectClassInconsistent DataAccessResult = 9
	ResultObjectUnavailable       DataAccessResult = 11
	ResultTypeUnmatched           DataAccessResult = 12
	ResultScopeOfAccessViolated   DataAccessResult = 13
	ResultDataBlockUnavailable    DataAccessResult = 14
	ResultLongGetAborted          DataAccessResult = 15
	ResultNoLongGetInProgress     DataAccessResult = 16
	ResultLongSetAborted          DataAccessResult = 17
	ResultNoLongSetInProgress     DataAccessResult = 18
	ResultDataBlockNumberInvalid  DataAccessResult = 19
	ResultOtherReason             DataAccessResult = 250
)

var dataAccessResultName = map[DataAccessResult]string{
	ResultSuccess:                 "success",
	ResultHardwareFault:           "hardware fault",
	ResultTemporaryFailure:        "temporary failure",
	ResultReadWriteDenied:         "read-write denied",
	ResultObjectUndefined:         "object undefined",
	ResultObjectClassInconsistent: "object class inconsistent",
	ResultObjectUnavailable:       "object unavailable",
	ResultTypeUnmatched:           "type unmatched",
	ResultScopeOfAccessViolated:   "scope of access violated",
	ResultDataBlockUnavailable:    "data block unavailable",
	ResultLongGetAborted:          "long get aborted",
	ResultNoLongGetInProgress:     "no long get in progress",
	ResultLongSetAborted:          "long set aborted",
	ResultNoLongSetInProgress:     "no long set in progress",
	ResultDataBlockNumberInvalid:  "data block number invalid",
	ResultOtherReason:             "other reason",
}

func (r DataAccessResult) String() string {
	if s, ok := dataAccessResultName[r]; ok {
		return s
	}
	return "unknown"
}

// ParseDataAccessResult validates a raw DataAccessResult octet.
func ParseDataAccessResult(b byte) (DataAccessResult, error) {
	if _, ok := dataAccessResultName[DataAccessResult(b)]; !ok {
		return 0, dlms.Newf(dlms.KindInvalidFormat, "xdlms: invalid data-access-result %d", b)
	}
	return DataAccessResult(b), nil
}

// AsError renders r as a *dlms.Error if it is not success, nil otherwise.
func (r DataAccessResult) AsError() error {
	if r == ResultSuccess {
		return nil
	}
	return dlms.WithCode(dlms.KindDataAccessResult, int(r), r.String())
}

// ActionResult is the ACTION service per-method error code, per Green Book
// Table 73. Codes 0-14 and 250 align with DataAccessResult; 15 and 16 are
// the long-action codes, and the long-set codes 17-19 have no counterpart.
type ActionResult byte

const (
	ActionSuccess                 ActionResult = 0
	ActionHardwareFault           ActionResult = 1
	ActionTemporaryFailure        ActionResult = 2
	ActionReadWriteDenied         ActionResult = 3
	ActionObjectUndefined         ActionResult = 4
	ActionObjectClassInconsistent ActionResult = 9
	ActionObjectUnavailable       ActionResult = 11
	ActionTypeUnmatched           ActionResult = 12
	ActionScopeOfAccessViolated   ActionResult = 13
	ActionDataBlockUnavailable    ActionResult = 14
	ActionLongActionAborted       ActionResult = 15
	ActionNoLongActionInProgress  ActionResult = 16
	ActionOtherReason             ActionResult = 250
)

var actionResultName = map[ActionResult]string{
	ActionSuccess:                 "success",
	ActionHardwareFault:           "hardware fault",
	ActionTemporaryFailure:        "temporary failure",
	ActionReadWriteDenied:         "read-write denied",
	ActionObjectUndefined:         "object undefined",
	ActionObjectClassInconsistent: "object class inconsistent",
	ActionObjectUnavailable:       "object unavailable",
	ActionTypeUnmatched:           "type unmatched",
	ActionScopeOfAccessViolated:   "scope of access violated",
	ActionDataBlockUnavailable:    "data block unavailable",
	ActionLongActionAborted:       "long action aborted",
	ActionNoLongActionInProgress:  "no long action in progress",
	ActionOtherReason:             "other reason",
}

func (r ActionResult) String() string {
	if s, ok := actionResultName[r]; ok {
		return s
	}
	return "unknown"
}

// ParseActionResult validates a raw ActionResult octet.
func ParseActionResult(b byte) (ActionResult, error) {
	if _, ok := actionResultName[ActionResult(b)]; !ok {
		return 0, dlms.Newf(dlms.KindInvalidFormat, "xdlms: invalid action-result %d", b)
	}
	return ActionResult(b), nil
}

// AsError renders r as a *dlms.Error if it is not success, nil otherwise.
func (r ActionResult) AsError() error {
	if r == ActionSuccess {
		return nil
	}
	return dlms.WithCode(dlms.KindActionResult, int(r), r.String())
}
