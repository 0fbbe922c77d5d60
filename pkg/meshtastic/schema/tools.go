//go:build tools

package schema

// This file records the vtprotobuf codegen dependency as a build-time
// tool import, the common Go idiom for a dependency that only a
// go:generate step needs, so `go mod tidy` doesn't drop it from go.mod
// even though nothing in the non-tools build imports it directly.
import (
	_ "github.com/planetscale/vtprotobuf/generator"
)
