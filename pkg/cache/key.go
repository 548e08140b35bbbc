package cache

import "strings"

var keyReplacer = strings.NewReplacer(
	" ", "_",
	",", "",
	"/", "_",
)

// NormalizeKey turns a logical key into a storage-safe one.
// The key is lowercased, spaces and slashes become underscores and commas are
// dropped. Normalizing an already normalized key returns it unchanged.
//
// Example:
//
//	forecast_New York, US_3_metric -> forecast_new_york_us_3_metric
func NormalizeKey(raw string) string {
	return keyReplacer.Replace(strings.ToLower(raw))
}
