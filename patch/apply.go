package patch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

var ErrNotObject = errors.New("patched document is not an object")

// ApplyRFC6902 applies ops to a JSON copy of doc and returns the patched
// document; doc itself is left as is. A replace of a missing member is
// applied as an add and removing a missing member is a no-op.
func ApplyRFC6902(doc map[string]any, ops []Operation) (map[string]any, error) {
	if len(ops) == 0 {
		return doc, nil
	}

	raw, err := sonic.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var plain map[string]any
	if err := sonic.Unmarshal(raw, &plain); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	opsJSON, err := sonic.Marshal(FixOperation(plain, ops))
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch operations: %w", err)
	}
	p, err := jsonpatch.DecodePatch(opsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patch: %w", err)
	}

	options := jsonpatch.NewApplyOptions()
	options.AllowMissingPathOnRemove = true
	patched, err := p.ApplyWithOptions(raw, options)
	if err != nil {
		return nil, fmt.Errorf("failed to apply patch: %w", err)
	}

	var out map[string]any
	if err := sonic.Unmarshal(patched, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotObject, err)
	}
	if out == nil {
		return nil, ErrNotObject
	}
	return out, nil
}

// FixOperation rewrites replace operations whose target is missing from doc
// into add operations. ops is not modified.
func FixOperation(doc map[string]any, ops []Operation) []Operation {
	fixed := make([]Operation, len(ops))
	for i, op := range ops {
		if op.Op == OperationReplace && !resolves(doc, op.Path) {
			op.Op = OperationAdd
		}
		fixed[i] = op
	}
	return fixed
}

// resolves reports whether pointer names an existing node of doc.
func resolves(doc any, pointer string) bool {
	if pointer == "" {
		return true
	}
	rest, ok := strings.CutPrefix(pointer, "/")
	if !ok {
		return false
	}
	node := doc
	for _, token := range strings.Split(rest, "/") {
		next, found := child(node, UnescapePointer(token))
		if !found {
			return false
		}
		node = next
	}
	return true
}

func child(node any, token string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		v, ok := n[token]
		return v, ok
	case []any:
		i, err := strconv.Atoi(token)
		if err != nil || i < 0 || i >= len(n) {
			return nil, false
		}
		return n[i], true
	}
	return nil, false
}
