package passmgr

import (
	"fmt"

	"github.com/skyripley/boomerang/pkg/bexpr"
)

// exprKey returns a comparable string summary of e's structural hash, used
// by passes that need to detect "did this rewrite actually change
// anything" without caring about the specific expression shape.
func exprKey(e bexpr.Expr) string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%x", bexpr.Hash(e))
}
