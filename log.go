package beconnected

import "net/url"

// LogMaskVal replaces sensitive values before they reach a log message.
const LogMaskVal = "xxxxxx"

// Mask replaces all values for key in vals with a single LogMaskVal.
// Mask does nothing if key is not set.
func Mask(vals url.Values, key string) {
	if _, ok := vals[key]; !ok {
		return
	}

	vals[key] = []string{LogMaskVal}
}
