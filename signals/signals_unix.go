//go:build unix

package signals

import "syscall"

func init() {
	byName["HUP"] = syscall.SIGHUP
	byName["QUIT"] = syscall.SIGQUIT
	byName["USR1"] = syscall.SIGUSR1
	byName["USR2"] = syscall.SIGUSR2
	byName["PIPE"] = syscall.SIGPIPE
	byName["WINCH"] = syscall.SIGWINCH
}
