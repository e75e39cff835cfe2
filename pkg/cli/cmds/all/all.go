// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/pursuit/pkg/cli/cmds/sim"
)
