//go:build luasema_debug

package symbols

import "fmt"

func debugScopeMismatch(expected, actual ScopeID) {
	panic(fmt.Sprintf("builder scope mismatch: expected %d, got %d", expected, actual))
}
