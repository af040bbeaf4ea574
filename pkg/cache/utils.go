package cache

import "fmt"

// GenerateKey joins a prefix and its parameters into a cache key.
func GenerateKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key = fmt.Sprintf("%s:%v", key, param)
	}
	return key
}
