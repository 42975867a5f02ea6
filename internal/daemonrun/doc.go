// Package daemonrun is the process entrypoint behind the hidden
// `queuedisplay daemon` command. It owns signal handling, the per-run log file
// and its pointer, log retention, the pid file, and the IPC server wrapped
// around the daemon.
package daemonrun
