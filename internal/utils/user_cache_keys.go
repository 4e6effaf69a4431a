package utils

import "strconv"

// Versioned cache keys for user read views. Bump the version when the JSON
// shape of a view changes.

func UsersListKey() string {
	return "users:list:v1"
}

func UserKey(id int64) string {
	return "users:id:v1:" + strconv.FormatInt(id, 10)
}
