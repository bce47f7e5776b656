package gqlquery

import (
	"fmt"
	"strconv"
)

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func fmtFallback(v interface{}) string {
	return fmt.Sprintf("%v", v)
}
