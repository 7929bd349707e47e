package tether

import "fmt"

// Operation is a resolution engine operation selected for an accessor.
type Operation int

const (
	OpInvalid Operation = iota
	OpGet
	OpGetDefault
	OpGetOptional
	OpGetList
	OpGetListDefault
	OpGetOptionalList
	OpGetSet
	OpGetSetDefault
	OpGetOptionalSet
	OpGetSortedSet
	OpGetSortedSetDefault
	OpGetOptionalSortedSet
	OpGetMap
	OpGetMapDefault
	OpGetOptionalMap
	OpGetSortedMap
	OpGetSortedMapDefault
	OpGetOptionalSortedMap

	numOperations
)

var operationNames = [numOperations]string{
	OpInvalid:              "invalid",
	OpGet:                  "get",
	OpGetDefault:           "getDefault",
	OpGetOptional:          "getOptional",
	OpGetList:              "getList",
	OpGetListDefault:       "getListDefault",
	OpGetOptionalList:      "getOptionalList",
	OpGetSet:               "getSet",
	OpGetSetDefault:        "getSetDefault",
	OpGetOptionalSet:       "getOptionalSet",
	OpGetSortedSet:         "getSortedSet",
	OpGetSortedSetDefault:  "getSortedSetDefault",
	OpGetOptionalSortedSet: "getOptionalSortedSet",
	OpGetMap:               "getMap",
	OpGetMapDefault:        "getMapDefault",
	OpGetOptionalMap:       "getOptionalMap",
	OpGetSortedMap:         "getSortedMap",
	OpGetSortedMapDefault:  "getSortedMapDefault",
	OpGetOptionalSortedMap: "getOptionalSortedMap",
}

func (o Operation) String() string {
	if o < 0 || o >= numOperations {
		return fmt.Sprintf("Operation(%d)", int(o))
	}
	return operationNames[o]
}

// decisionTable maps (container kind, default present) to an operation.
// Optional kinds with a default are never legal.
var decisionTable = [numKinds][2]Operation{
	KindScalar:            {OpGet, OpGetDefault},
	KindOptional:          {OpGetOptional, OpInvalid},
	KindList:              {OpGetList, OpGetListDefault},
	KindOptionalList:      {OpGetOptionalList, OpInvalid},
	KindSet:               {OpGetSet, OpGetSetDefault},
	KindOptionalSet:       {OpGetOptionalSet, OpInvalid},
	KindSortedSet:         {OpGetSortedSet, OpGetSortedSetDefault},
	KindOptionalSortedSet: {OpGetOptionalSortedSet, OpInvalid},
	KindMap:               {OpGetMap, OpGetMapDefault},
	KindOptionalMap:       {OpGetOptionalMap, OpInvalid},
	KindSortedMap:         {OpGetSortedMap, OpGetSortedMapDefault},
	KindOptionalSortedMap: {OpGetOptionalSortedMap, OpInvalid},
}

// Decide returns the engine operation for an accessor of the given kind.
func Decide(kind ContainerKind, hasDefault bool) (Operation, error) {
	if kind < 0 || kind >= numKinds {
		return OpInvalid, fmt.Errorf("tether: unknown container kind %d", int(kind))
	}
	col := 0
	if hasDefault {
		col = 1
	}
	op := decisionTable[kind][col]
	if op == OpInvalid {
		return OpInvalid, fmt.Errorf("tether: %s accessor cannot carry a default value", kind)
	}
	return op, nil
}
