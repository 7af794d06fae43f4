package utils

import "strings"

// CheckAndCorrectURL strips trailing slashes and makes sure the URL has a
// scheme, defaulting to http.
func CheckAndCorrectURL(raw string) string {
	url := strings.TrimRight(raw, "/")
	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		return url
	}
	return "http://" + url
}
