package gas

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
)

// ParsePullResponse decodes a pull response body. The endpoint normally
// returns raw JSON but some deployments wrap it in the requested callback,
// so a callback-wrapped body is unwrapped and retried. Transaction ids and
// amounts are canonicalized by the decoder itself.
func ParsePullResponse(body []byte) (core.DataExport, error) {
	body = bytes.TrimSpace(body)

	var data core.DataExport
	if err := json.Unmarshal(body, &data); err == nil {
		return data, nil
	}

	inner, ok := unwrapCallback(body)
	if !ok {
		return core.DataExport{}, fmt.Errorf("malformed pull response")
	}
	if err := json.Unmarshal(inner, &data); err != nil {
		return core.DataExport{}, fmt.Errorf("decode callback-wrapped response: %w", err)
	}
	return data, nil
}

// unwrapCallback strips a `name({...})` wrapper, returning the inner JSON.
func unwrapCallback(body []byte) ([]byte, bool) {
	open := bytes.IndexByte(body, '(')
	end := bytes.LastIndexByte(body, ')')
	if open < 0 || end < open {
		return nil, false
	}
	inner := bytes.TrimSpace(body[open+1 : end])
	if len(inner) == 0 {
		return nil, false
	}
	return inner, true
}
