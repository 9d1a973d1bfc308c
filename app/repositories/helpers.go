package repositories

import "regexp"

// regexQuote escapes user input before it is embedded into a $regex filter.
func regexQuote(s string) string {
	return regexp.QuoteMeta(s)
}
